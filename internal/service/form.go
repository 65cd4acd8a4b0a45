package service

import (
	"context"
	"log/slog"

	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/form"
	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/i18n"
	apperrors "github.com/jun-JUNJUN/dxeeworld-sub001/pkg/errors"
)

// FormService manages localized review form sessions. Sessions live in
// memory; submitting the drafted review goes through ReviewService.
type FormService struct {
	sessions *form.SessionStore
	catalog  *i18n.Catalog
	logger   *slog.Logger
}

// NewFormService creates a new form service.
func NewFormService(sessions *form.SessionStore, catalog *i18n.Catalog, logger *slog.Logger) *FormService {
	return &FormService{
		sessions: sessions,
		catalog:  catalog,
		logger:   logger,
	}
}

// StartSession opens a form session in the locale detected from the given
// language tag, typically the browser's preferred Accept-Language value.
// Unrecognized tags fall back to English.
func (s *FormService) StartSession(ctx context.Context, localeTag string) *form.Session {
	locale := i18n.DetectDefaultLocale(localeTag)
	sess := s.sessions.Create(locale)

	s.logger.DebugContext(ctx, "form session started",
		slog.String("session_id", sess.ID()),
		slog.String("locale", string(locale)),
	)
	return sess
}

// GetSession retrieves an open form session.
func (s *FormService) GetSession(ctx context.Context, id string) (*form.Session, error) {
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, apperrors.NotFound("form session", id)
	}
	return sess, nil
}

// SwitchLocale re-renders a session's form texts in the given locale.
func (s *FormService) SwitchLocale(ctx context.Context, id, locale string) (*form.Session, error) {
	sess, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := sess.SwitchLocale(i18n.Locale(locale)); err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "form session locale switched",
		slog.String("session_id", id),
		slog.String("locale", locale),
	)
	return sess, nil
}

// ChangeEmploymentStatus applies an employment status selection to the
// session, adjusting the end-year field state.
func (s *FormService) ChangeEmploymentStatus(ctx context.Context, id, status string) (*form.Session, error) {
	sess, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := sess.HandleEmploymentStatusChange(status); err != nil {
		return nil, err
	}
	return sess, nil
}

// UpdateDraft merges edited field values into the session's draft.
func (s *FormService) UpdateDraft(ctx context.Context, id string, update form.DraftUpdate) (*form.Session, error) {
	sess, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.ApplyDraft(update)
	return sess, nil
}

// CloseSession discards a form session. Closing an unknown session is a
// no-op: the client's goal state is reached either way.
func (s *FormService) CloseSession(ctx context.Context, id string) {
	s.sessions.Delete(id)
}

// ResolveCatalog returns the full UI text catalog flattened for one locale.
// An empty locale resolves to English; an explicit unsupported locale is an
// error rather than a silent fallback.
func (s *FormService) ResolveCatalog(ctx context.Context, locale string) (*i18n.ResolvedCatalog, error) {
	if locale == "" {
		return s.catalog.Resolve(i18n.LocaleEN), nil
	}
	loc := i18n.Locale(locale)
	if !i18n.IsSupported(loc) {
		return nil, apperrors.UnsupportedLocale(locale)
	}
	return s.catalog.Resolve(loc), nil
}
