package caretakers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("link not found")
	ErrBadState     = errors.New("invalid state")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type InviteInput struct {
	PatientID   string
	CaretakerID string
	Scopes      []Scope
}

// Invite crea una invitación. Si ya existe un link vigente para el par, se
// actualizan sus scopes en lugar de duplicarlo.
func (s *Service) Invite(ctx context.Context, in InviteInput) (Link, error) {
	patientID := strings.TrimSpace(in.PatientID)
	caretakerID := strings.TrimSpace(in.CaretakerID)

	if patientID == "" || caretakerID == "" || patientID == caretakerID {
		return Link{}, ErrInvalidInput
	}

	scopes := append([]Scope(nil), DefaultScopes...)
	if len(in.Scopes) > 0 {
		var err error
		scopes, err = normalizeScopesStrict(in.Scopes)
		if err != nil {
			return Link{}, err
		}
		if len(scopes) == 0 {
			return Link{}, ErrInvalidInput
		}
	}

	now := s.now()

	existing, matches, err := s.findLatestMatch(ctx, patientID, caretakerID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return Link{}, err
	}
	if err == nil && existing.Status != StatusRevoked {
		s.revokeOtherMatches(ctx, existing.ID, matches, now)

		existing.Scopes = scopes
		existing.UpdatedAt = now
		if err := s.repo.Update(ctx, existing); err != nil {
			return Link{}, err
		}
		return existing, nil
	}

	l := Link{
		ID:          uuid.NewString(),
		PatientID:   patientID,
		CaretakerID: caretakerID,
		Scopes:      scopes,
		Status:      StatusInvited,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return Link{}, err
	}
	return l, nil
}

func (s *Service) Accept(ctx context.Context, linkID, caretakerID string) (Link, error) {
	linkID = strings.TrimSpace(linkID)
	caretakerID = strings.TrimSpace(caretakerID)
	if linkID == "" || caretakerID == "" {
		return Link{}, ErrInvalidInput
	}

	l, err := s.repo.GetByID(ctx, linkID)
	if err != nil {
		return Link{}, ErrNotFound
	}
	if l.CaretakerID != caretakerID {
		return Link{}, ErrForbidden
	}

	switch l.Status {
	case StatusActive:
		return l, nil
	case StatusInvited:
	default:
		return Link{}, ErrBadState
	}

	now := s.now()
	l.Status = StatusActive
	l.UpdatedAt = now
	if err := s.repo.Update(ctx, l); err != nil {
		return Link{}, err
	}

	// Un solo link activo por par paciente/cuidador.
	if _, matches, err := s.findLatestMatch(ctx, l.PatientID, l.CaretakerID); err == nil {
		s.revokeOtherMatches(ctx, l.ID, matches, now)
	}
	return l, nil
}

// Revoke puede hacerlo el paciente o el propio cuidador (dejar de cuidar).
func (s *Service) Revoke(ctx context.Context, linkID, userID string) (Link, error) {
	linkID = strings.TrimSpace(linkID)
	userID = strings.TrimSpace(userID)
	if linkID == "" || userID == "" {
		return Link{}, ErrInvalidInput
	}

	l, err := s.repo.GetByID(ctx, linkID)
	if err != nil {
		return Link{}, ErrNotFound
	}
	if l.PatientID != userID && l.CaretakerID != userID {
		return Link{}, ErrForbidden
	}
	if l.Status == StatusRevoked {
		return l, nil
	}

	now := s.now()
	l.Status = StatusRevoked
	l.UpdatedAt = now
	l.RevokedAt = &now
	if err := s.repo.Update(ctx, l); err != nil {
		return Link{}, err
	}
	return l, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID string) ([]Link, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByPatient(ctx, patientID)
}

func (s *Service) ListByCaretaker(ctx context.Context, caretakerID string) ([]Link, error) {
	caretakerID = strings.TrimSpace(caretakerID)
	if caretakerID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByCaretaker(ctx, caretakerID)
}

// PatientsOf devuelve los pacientes con link activo para el cuidador que
// incluyan el scope dado.
func (s *Service) PatientsOf(ctx context.Context, caretakerID string, scope Scope) ([]string, error) {
	links, err := s.ListByCaretaker(ctx, caretakerID)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(links))
	seen := map[string]struct{}{}
	for _, l := range links {
		if l.Status != StatusActive || !HasScope(l, scope) {
			continue
		}
		if _, ok := seen[l.PatientID]; ok {
			continue
		}
		seen[l.PatientID] = struct{}{}
		out = append(out, l.PatientID)
	}
	return out, nil
}

func (s *Service) GetActiveLink(ctx context.Context, patientID, caretakerID string) (Link, error) {
	patientID = strings.TrimSpace(patientID)
	caretakerID = strings.TrimSpace(caretakerID)
	if patientID == "" || caretakerID == "" {
		return Link{}, ErrInvalidInput
	}
	l, err := s.repo.GetActiveLink(ctx, patientID, caretakerID)
	if err != nil {
		return Link{}, ErrNotFound
	}
	return l, nil
}

// Authorize: el paciente siempre pasa; un cuidador necesita link activo con el scope.
func (s *Service) Authorize(ctx context.Context, patientID, userID string, scope Scope) error {
	patientID = strings.TrimSpace(patientID)
	userID = strings.TrimSpace(userID)
	if patientID == "" || userID == "" {
		return ErrForbidden
	}
	if patientID == userID {
		return nil
	}
	l, err := s.GetActiveLink(ctx, patientID, userID)
	if err != nil || !HasScope(l, scope) {
		return ErrForbidden
	}
	return nil
}

func HasScope(l Link, scope Scope) bool {
	for _, s := range l.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

func (s *Service) findLatestMatch(ctx context.Context, patientID, caretakerID string) (Link, []Link, error) {
	items, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return Link{}, nil, err
	}

	var (
		winner    Link
		hasWinner bool
		matches   []Link
	)
	for _, l := range items {
		if l.CaretakerID != caretakerID {
			continue
		}
		matches = append(matches, l)
		if !hasWinner || l.UpdatedAt.After(winner.UpdatedAt) {
			winner = l
			hasWinner = true
		}
	}
	if !hasWinner {
		return Link{}, matches, ErrNotFound
	}
	return winner, matches, nil
}

func (s *Service) revokeOtherMatches(ctx context.Context, keepID string, matches []Link, now time.Time) {
	for _, l := range matches {
		if l.ID == keepID || l.Status == StatusRevoked {
			continue
		}
		l.Status = StatusRevoked
		l.UpdatedAt = now
		l.RevokedAt = &now
		_ = s.repo.Update(ctx, l) // best-effort
	}
}

func normalizeScopesStrict(in []Scope) ([]Scope, error) {
	allowed := map[Scope]struct{}{
		ScopeMedicationsRead:  {},
		ScopeMedicationsWrite: {},
		ScopeDosesRead:        {},
		ScopeDosesRecord:      {},
		ScopeAdherenceRead:    {},
	}

	seen := map[Scope]struct{}{}
	out := make([]Scope, 0, len(in))
	for _, raw := range in {
		sc := Scope(strings.TrimSpace(string(raw)))
		if sc == "" {
			continue
		}
		if _, ok := allowed[sc]; !ok {
			return nil, ErrInvalidInput
		}
		if _, ok := seen[sc]; ok {
			continue
		}
		seen[sc] = struct{}{}
		out = append(out, sc)
	}
	return out, nil
}
