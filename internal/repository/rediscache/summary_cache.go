// Package rediscache provides a read-through Redis cache for company rating
// summaries. All operations run behind a circuit breaker: when Redis
// degrades, reads report a miss-like error and callers fall through to the
// database instead of stacking up timeouts.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"

	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/domain"
)

const keyPrefix = "rating:summary:"

// CircuitBreakerConfig holds configuration for the cache's circuit breaker.
type CircuitBreakerConfig struct {
	// Name identifies this breaker (used in metrics and logs).
	Name string

	// MaxRequests is the maximum number of requests allowed in the half-open state.
	MaxRequests uint32

	// Interval is the cyclic period of the closed state for clearing internal counts.
	Interval time.Duration

	// Timeout is how long the breaker stays open before moving to half-open.
	Timeout time.Duration

	// FailureRatio is the ratio of failures to total requests that trips the breaker.
	FailureRatio float64

	// MinRequests is the minimum number of requests needed before the failure ratio is evaluated.
	MinRequests uint32
}

// DefaultCircuitBreakerConfig returns sensible defaults for the summary
// cache breaker.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:         "rating-summary-cache",
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      30 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
	}
}

var (
	summaryCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rating_summary_cache_hits_total",
			Help: "Total number of rating summary cache hits",
		},
	)

	summaryCacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rating_summary_cache_misses_total",
			Help: "Total number of rating summary cache misses",
		},
	)

	summaryCacheErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rating_summary_cache_errors_total",
			Help: "Total number of rating summary cache operations degraded by Redis errors or an open breaker",
		},
	)

	circuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current state of the circuit breaker (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

func init() {
	prometheus.MustRegister(summaryCacheHits)
	prometheus.MustRegister(summaryCacheMisses)
	prometheus.MustRegister(summaryCacheErrors)
	prometheus.MustRegister(circuitBreakerState)
}

// stateToFloat maps gobreaker states to prometheus gauge values.
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// ErrCircuitOpen is returned when the breaker is open and rejects the
// operation without touching Redis.
var ErrCircuitOpen = gobreaker.ErrOpenState

// SummaryCache caches company rating summaries in Redis.
type SummaryCache struct {
	client  *redis.Client
	ttl     time.Duration
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  *slog.Logger
	name    string
}

// NewSummaryCache creates a summary cache with the given TTL and breaker
// configuration.
func NewSummaryCache(client *redis.Client, ttl time.Duration, cbCfg CircuitBreakerConfig, logger *slog.Logger) *SummaryCache {
	settings := gobreaker.Settings{
		Name:        cbCfg.Name,
		MaxRequests: cbCfg.MaxRequests,
		Interval:    cbCfg.Interval,
		Timeout:     cbCfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cbCfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cbCfg.FailureRatio
		},
		// A cache miss is a normal outcome, not a Redis failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			circuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	}

	circuitBreakerState.WithLabelValues(cbCfg.Name).Set(0)

	return &SummaryCache{
		client:  client,
		ttl:     ttl,
		breaker: gobreaker.NewCircuitBreaker[[]byte](settings),
		logger:  logger,
		name:    cbCfg.Name,
	}
}

// Get returns the cached summary for a company. A cache miss returns
// (nil, nil); a degraded cache (Redis error or open breaker) returns an
// error, and callers fall through to the database either way.
func (c *SummaryCache) Get(ctx context.Context, companyID string) (*domain.CompanyRatingSummary, error) {
	data, err := c.breaker.Execute(func() ([]byte, error) {
		return c.client.Get(ctx, keyPrefix+companyID).Bytes()
	})
	if err != nil {
		if errors.Is(err, redis.Nil) {
			summaryCacheMisses.Inc()
			return nil, nil
		}
		summaryCacheErrors.Inc()
		return nil, fmt.Errorf("cache get summary: %w", err)
	}

	var summary domain.CompanyRatingSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		// A corrupt entry behaves like a miss; the next write repairs it.
		summaryCacheErrors.Inc()
		return nil, fmt.Errorf("unmarshal cached summary: %w", err)
	}

	summaryCacheHits.Inc()
	return &summary, nil
}

// Set stores the summary with the configured TTL.
func (c *SummaryCache) Set(ctx context.Context, summary *domain.CompanyRatingSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	_, err = c.breaker.Execute(func() ([]byte, error) {
		return nil, c.client.Set(ctx, keyPrefix+summary.CompanyID, data, c.ttl).Err()
	})
	if err != nil {
		summaryCacheErrors.Inc()
		return fmt.Errorf("cache set summary: %w", err)
	}

	return nil
}

// Invalidate removes a company's cached summary.
func (c *SummaryCache) Invalidate(ctx context.Context, companyID string) error {
	_, err := c.breaker.Execute(func() ([]byte, error) {
		return nil, c.client.Del(ctx, keyPrefix+companyID).Err()
	})
	if err != nil {
		summaryCacheErrors.Inc()
		return fmt.Errorf("cache invalidate summary: %w", err)
	}

	return nil
}

// State returns the current state of the circuit breaker.
func (c *SummaryCache) State() gobreaker.State {
	return c.breaker.State()
}
