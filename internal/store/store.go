// Package store holds the panel's shared state: repository metadata, star
// statistics and the star history, plus the load status of each slice.
package store

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/naka-gawa/star-trend/internal/domain"
)

var (
	// ErrUnknownKey is returned for a key that does not name a state slice.
	ErrUnknownKey = errors.New("unknown state key")
	// ErrInvalidValue is returned when a value does not match its slice type.
	ErrInvalidValue = errors.New("invalid state value")
	// ErrStaleRequest is returned when a superseded request tries to update state.
	ErrStaleRequest = errors.New("stale request")
)

// Key names a top-level state slice.
type Key string

const (
	KeyRepoStats Key = "repoStats"
	KeyStarStats Key = "starStats"
	KeyStarData  Key = "starData"
)

func (k Key) valid() bool {
	switch k {
	case KeyRepoStats, KeyStarStats, KeyStarData:
		return true
	}
	return false
}

// Phase is the load phase of a slice.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
	PhaseFailed  Phase = "failed"
)

// Status reports how far a slice got and why it failed, if it did.
type Status struct {
	Phase Phase
	Err   error
}

// State is a point-in-time copy of the store contents.
type State struct {
	RepoStats *domain.RepoStats
	StarStats *domain.StarStats
	StarData  domain.StarHistory
	Status    map[Key]Status
}

// Patch lists fields to merge into a slice. Nil fields are left untouched.
type Patch struct {
	Owner        *string
	Name         *string
	TotalStar    *int
	MaxIncrement *int
	CreatedAt    *time.Time
}

// Store is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	state    State
	requests map[Key]uint64
}

// New returns an empty store with every slice idle.
func New() *Store {
	return &Store{
		state: State{Status: map[Key]Status{
			KeyRepoStats: {Phase: PhaseIdle},
			KeyStarStats: {Phase: PhaseIdle},
			KeyStarData:  {Phase: PhaseIdle},
		}},
		requests: make(map[Key]uint64),
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := State{
		StarData: s.state.StarData.Clone(),
		Status:   make(map[Key]Status, len(s.state.Status)),
	}
	if s.state.RepoStats != nil {
		repo := *s.state.RepoStats
		out.RepoStats = &repo
	}
	if s.state.StarStats != nil {
		st := *s.state.StarStats
		out.StarStats = &st
	}
	for k, v := range s.state.Status {
		out.Status[k] = v
	}
	return out
}

// UpdateState replaces the named slice wholesale and marks it ready.
func (s *Store) UpdateState(key Key, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.replace(key, value); err != nil {
		return err
	}
	s.state.Status[key] = Status{Phase: PhaseReady}
	return nil
}

// UpdateStatsField merges patch into the named slice, creating the slice if
// it is still empty. Fields that do not belong to the slice are rejected.
func (s *Store) UpdateStatsField(key Key, patch Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.merge(key, patch)
}

func (s *Store) replace(key Key, value any) error {
	switch key {
	case KeyRepoStats:
		v, ok := value.(domain.RepoStats)
		if !ok {
			return fmt.Errorf("%w: %s expects domain.RepoStats, got %T", ErrInvalidValue, key, value)
		}
		s.state.RepoStats = &v
	case KeyStarStats:
		v, ok := value.(domain.StarStats)
		if !ok {
			return fmt.Errorf("%w: %s expects domain.StarStats, got %T", ErrInvalidValue, key, value)
		}
		s.state.StarStats = &v
	case KeyStarData:
		v, ok := value.(domain.StarHistory)
		if !ok {
			return fmt.Errorf("%w: %s expects domain.StarHistory, got %T", ErrInvalidValue, key, value)
		}
		if err := v.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}
		s.state.StarData = v.Clone()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return nil
}

func (s *Store) merge(key Key, p Patch) error {
	switch key {
	case KeyRepoStats:
		if p.TotalStar != nil || p.MaxIncrement != nil {
			return fmt.Errorf("%w: star fields do not belong to %s", ErrInvalidValue, key)
		}
		if s.state.RepoStats == nil {
			s.state.RepoStats = &domain.RepoStats{}
		}
		if p.Owner != nil {
			s.state.RepoStats.Owner = *p.Owner
		}
		if p.Name != nil {
			s.state.RepoStats.Name = *p.Name
		}
		if p.CreatedAt != nil {
			s.state.RepoStats.CreatedAt = *p.CreatedAt
		}
	case KeyStarStats:
		if p.Owner != nil || p.Name != nil {
			return fmt.Errorf("%w: repository fields do not belong to %s", ErrInvalidValue, key)
		}
		if s.state.StarStats == nil {
			s.state.StarStats = &domain.StarStats{}
		}
		if p.TotalStar != nil {
			s.state.StarStats.TotalStar = *p.TotalStar
		}
		if p.MaxIncrement != nil {
			s.state.StarStats.MaxIncrement = *p.MaxIncrement
		}
		if p.CreatedAt != nil {
			s.state.StarStats.CreatedAt = *p.CreatedAt
		}
	case KeyStarData:
		return fmt.Errorf("%w: %s cannot be merged field by field", ErrInvalidValue, key)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return nil
}
