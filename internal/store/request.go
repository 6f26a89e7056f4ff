package store

import (
	"fmt"
	"slices"
)

// Request identifies one fetch for a slice. Starting a new request for the
// same slice supersedes the previous one, whose later updates are dropped
// with ErrStaleRequest.
//
// A request may also own related slices that it fills in as a side effect.
// Their status follows the request's own slice.
type Request struct {
	store   *Store
	key     Key
	related []Key
	id      uint64
}

// Begin starts a request for key and marks the slice, and every related
// slice, as loading.
func (s *Store) Begin(key Key, related ...Key) (*Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range append([]Key{key}, related...) {
		if !k.valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKey, k)
		}
	}
	s.requests[key]++
	r := &Request{store: s, key: key, related: slices.Clone(related), id: s.requests[key]}
	r.setStatus(Status{Phase: PhaseLoading})
	return r, nil
}

// Key returns the slice the request writes to.
func (r *Request) Key() Key {
	return r.key
}

// Current reports whether no newer request for the slice has begun.
func (r *Request) Current() bool {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.current()
}

func (r *Request) current() bool {
	return r.store.requests[r.key] == r.id
}

func (r *Request) owns(key Key) bool {
	return key == r.key || slices.Contains(r.related, key)
}

func (r *Request) setStatus(status Status) {
	r.store.state.Status[r.key] = status
	for _, k := range r.related {
		r.store.state.Status[k] = status
	}
}

// UpdateState replaces the named slice, unless the request is stale. The
// request's own and related slices stay loading until Done is called; any
// other slice is ready once written.
func (r *Request) UpdateState(key Key, value any) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if !r.current() {
		return fmt.Errorf("%w: %s #%d", ErrStaleRequest, r.key, r.id)
	}
	if err := r.store.replace(key, value); err != nil {
		return err
	}
	if !r.owns(key) {
		r.store.state.Status[key] = Status{Phase: PhaseReady}
	}
	return nil
}

// UpdateStatsField merges patch into key, unless the request is stale.
func (r *Request) UpdateStatsField(key Key, patch Patch) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if !r.current() {
		return fmt.Errorf("%w: %s #%d", ErrStaleRequest, r.key, r.id)
	}
	return r.store.merge(key, patch)
}

// Done marks the request's slices as ready, unless the request is stale.
func (r *Request) Done() error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if !r.current() {
		return fmt.Errorf("%w: %s #%d", ErrStaleRequest, r.key, r.id)
	}
	r.setStatus(Status{Phase: PhaseReady})
	return nil
}

// Fail records err as the status of the request's slices, unless the
// request is stale.
func (r *Request) Fail(err error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if !r.current() {
		return fmt.Errorf("%w: %s #%d", ErrStaleRequest, r.key, r.id)
	}
	r.setStatus(Status{Phase: PhaseFailed, Err: err})
	return nil
}
