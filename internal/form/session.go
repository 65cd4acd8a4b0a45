// Package form implements the locale-aware review form: per-session render
// state over the translation catalog plus the employment-status input
// coupling. Validation stays in internal/domain; everything here is
// presentation state.
package form

import (
	"fmt"
	"sync"

	apperrors "github.com/jun-JUNJUN/dxeeworld-sub001/pkg/errors"

	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/domain"
	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/i18n"
)

// EndYearField is the end-year input's interactive state. Value mirrors what
// the user sees: digits, the "present" sentinel, or empty.
type EndYearField struct {
	Value    string `json:"value"`
	Disabled bool   `json:"disabled"`
}

// Draft holds the values entered so far. Locale switches never touch it.
type Draft struct {
	CompanyID           string       `json:"company_id"`
	EmploymentStatus    string       `json:"employment_status"`
	EmploymentStartYear string       `json:"employment_start_year"`
	EmploymentEndYear   EndYearField `json:"employment_end_year"`
	OverallRating       int          `json:"overall_rating"`
	Title               string       `json:"title"`
	Body                string       `json:"body"`
}

// DraftUpdate carries a partial draft edit; nil fields are left unchanged.
// EmploymentStatus is deliberately absent: status changes go through
// HandleEmploymentStatusChange so the end-year state stays consistent.
type DraftUpdate struct {
	CompanyID           *string
	EmploymentStartYear *string
	EmploymentEndYear   *string
	OverallRating       *int
	Title               *string
	Body                *string
}

// Session is one user's in-progress review form: the rendered catalog texts
// for the active locale plus the draft values. The catalog is shared and
// read-only; all mutable state is owned by the session, so concurrent
// sessions never interfere.
type Session struct {
	id      string
	catalog *i18n.Catalog

	mu           sync.Mutex
	locale       i18n.Locale
	labels       map[string]string
	placeholders map[string]string
	buttons      map[string]string
	draft        Draft
}

// NewSession renders a fresh session in the given locale. Unsupported
// locales fall back to English; callers resolve user preferences through
// i18n.DetectDefaultLocale first.
func NewSession(id string, catalog *i18n.Catalog, loc i18n.Locale) *Session {
	if !i18n.IsSupported(loc) {
		loc = i18n.LocaleEN
	}
	resolved := catalog.Resolve(loc)
	return &Session{
		id:           id,
		catalog:      catalog,
		locale:       loc,
		labels:       resolved.Labels,
		placeholders: resolved.Placeholders,
		buttons:      resolved.Buttons,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Locale returns the session's active locale.
func (s *Session) Locale() i18n.Locale {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locale
}

// SwitchLocale re-renders every catalog-backed text in the target locale in
// a single pass. Locales outside the supported set fail with
// UNSUPPORTED_LOCALE and leave the session untouched. Keys with no entry for
// the target locale keep their previous text, and entered draft values are
// never modified or re-validated.
func (s *Session) SwitchLocale(loc i18n.Locale) error {
	if !i18n.IsSupported(loc) {
		return apperrors.UnsupportedLocale(string(loc))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.catalog.Labels {
		if text, ok := s.catalog.Label(key, loc); ok {
			s.labels[key] = text
		}
	}
	for key := range s.catalog.Placeholders {
		if text, ok := s.catalog.Placeholder(key, loc); ok {
			s.placeholders[key] = text
		}
	}
	for key := range s.catalog.Buttons {
		if text, ok := s.catalog.Button(key, loc); ok {
			s.buttons[key] = text
		}
	}
	s.locale = loc
	return nil
}

// HandleEmploymentStatusChange records the selected status and keeps the
// end-year input consistent with it: current forces the field to the
// "present" sentinel and disables it; former re-enables it and clears a
// lingering sentinel to empty so the user must supply a real year. The
// authoritative period validation still runs server-side on submission.
func (s *Session) HandleEmploymentStatusChange(status string) error {
	if !domain.IsValidEmploymentStatus(status) {
		return apperrors.InvalidInput(fmt.Sprintf("unknown employment status %q", status))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.draft.EmploymentStatus = status
	switch status {
	case domain.EmploymentStatusCurrent:
		s.draft.EmploymentEndYear = EndYearField{Value: domain.EndYearPresent, Disabled: true}
	case domain.EmploymentStatusFormer:
		s.draft.EmploymentEndYear.Disabled = false
		if s.draft.EmploymentEndYear.Value == domain.EndYearPresent {
			s.draft.EmploymentEndYear.Value = ""
		}
	}
	return nil
}

// ApplyDraft merges the non-nil fields of the update into the draft. An
// end-year edit is dropped while the input is disabled, mirroring the form.
func (s *Session) ApplyDraft(u DraftUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.CompanyID != nil {
		s.draft.CompanyID = *u.CompanyID
	}
	if u.EmploymentStartYear != nil {
		s.draft.EmploymentStartYear = *u.EmploymentStartYear
	}
	if u.EmploymentEndYear != nil && !s.draft.EmploymentEndYear.Disabled {
		s.draft.EmploymentEndYear.Value = *u.EmploymentEndYear
	}
	if u.OverallRating != nil {
		s.draft.OverallRating = *u.OverallRating
	}
	if u.Title != nil {
		s.draft.Title = *u.Title
	}
	if u.Body != nil {
		s.draft.Body = *u.Body
	}
}

// Draft returns a copy of the entered values.
func (s *Session) Draft() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// View is a render snapshot of a session, safe to serialize concurrently
// with further edits.
type View struct {
	ID           string            `json:"id"`
	Locale       i18n.Locale       `json:"locale"`
	Labels       map[string]string `json:"labels"`
	Placeholders map[string]string `json:"placeholders"`
	Buttons      map[string]string `json:"buttons"`
	Draft        Draft             `json:"draft"`
}

// View snapshots the session's rendered texts and draft.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		ID:           s.id,
		Locale:       s.locale,
		Labels:       copyTexts(s.labels),
		Placeholders: copyTexts(s.placeholders),
		Buttons:      copyTexts(s.buttons),
		Draft:        s.draft,
	}
}

func copyTexts(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
