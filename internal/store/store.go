// Package store owns the in-memory collection of monitored sources shared
// by the polling service and the management API.
package store

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store is a mutex-guarded map of sources keyed by id. It is created once
// at startup and passed to the scheduler and the management surface; there
// is no global instance.
type Store struct {
	mu      sync.RWMutex
	sources map[string]*Source

	// checkMu serializes scheduled and ad-hoc checks of the same source so
	// baseline read-modify-write cycles never race.
	checkLocks map[string]*sync.Mutex
}

// New constructs an empty store.
func New() *Store {
	return &Store{
		sources:    make(map[string]*Source),
		checkLocks: make(map[string]*sync.Mutex),
	}
}

// Add registers a new source and assigns it an id.
func (s *Store) Add(name, url, faction string, enabled bool) (Source, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(url) == "" {
		return Source{}, ErrInvalidSource
	}

	src := &Source{
		ID:      uuid.NewString(),
		Name:    name,
		URL:     url,
		Faction: faction,
		Enabled: enabled,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources[src.ID] = src
	s.checkLocks[src.ID] = &sync.Mutex{}
	return *src, nil
}

// Get returns a copy of one source.
func (s *Store) Get(id string) (Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src, ok := s.sources[id]
	if !ok {
		return Source{}, ErrSourceNotFound
	}
	return *src, nil
}

// List returns copies of all sources ordered by name, then id.
func (s *Store) List() []Source {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Source, 0, len(s.sources))
	for _, src := range s.sources {
		out = append(out, *src)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Enabled returns copies of all enabled sources in List order.
func (s *Store) Enabled() []Source {
	all := s.List()
	out := all[:0]
	for _, src := range all {
		if src.Enabled {
			out = append(out, src)
		}
	}
	return out
}

// Apply performs a partial update. Changing the URL invalidates the
// detection baseline: the old and new endpoints are not comparable, so the
// next conclusive poll re-establishes it silently.
func (s *Store) Apply(id string, upd Update) (Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, ok := s.sources[id]
	if !ok {
		return Source{}, ErrSourceNotFound
	}

	if upd.Name != nil {
		if strings.TrimSpace(*upd.Name) == "" {
			return Source{}, ErrInvalidSource
		}
		src.Name = *upd.Name
	}
	if upd.URL != nil {
		if strings.TrimSpace(*upd.URL) == "" {
			return Source{}, ErrInvalidSource
		}
		if *upd.URL != src.URL {
			src.URL = *upd.URL
			src.Baseline = ""
			src.LastBuyCount = 0
		}
	}
	if upd.Faction != nil {
		src.Faction = *upd.Faction
	}
	if upd.Enabled != nil {
		src.Enabled = *upd.Enabled
	}
	return *src, nil
}

// Delete removes a source.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sources[id]; !ok {
		return ErrSourceNotFound
	}
	delete(s.sources, id)
	delete(s.checkLocks, id)
	return nil
}

// AcquireCheck takes the per-source check lock, blocking until any in-flight
// check of the same source finishes. The second return is false when the
// source no longer exists.
func (s *Store) AcquireCheck(id string) (release func(), ok bool) {
	s.mu.RLock()
	mu, ok := s.checkLocks[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	mu.Lock()
	return mu.Unlock, true
}

// MarkChecked stamps the completion time of a poll attempt. This is the
// only state an inconclusive poll may touch.
func (s *Store) MarkChecked(id string, t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if src, ok := s.sources[id]; ok {
		src.LastCheck = &t
	}
}

// CommitPoll records the combined signature and buy count of a conclusive
// poll. Called whether or not an alert was emitted; suppression affects
// notification only, not the tracked baseline.
func (s *Store) CommitPoll(id, combined string, buyCount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if src, ok := s.sources[id]; ok {
		src.Baseline = combined
		src.LastBuyCount = buyCount
	}
}

// RecordAlert bumps the alert bookkeeping for an emitted alert.
func (s *Store) RecordAlert(id string, at int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if src, ok := s.sources[id]; ok {
		src.AlertCount++
		src.LastAlertAt = at
	}
}
