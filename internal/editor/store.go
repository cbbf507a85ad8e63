package editor

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-editor/internal/analysis"
	"github.com/jonathan/resume-editor/internal/types"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("session not found")

// entry guards one session. Operations on different sessions never contend.
type entry struct {
	mu      sync.Mutex
	session *Session
}

// Store keeps editing sessions in memory. Sessions idle for longer than the TTL are dropped
// by a background sweep; nothing is persisted.
type Store struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*entry
	ttl      time.Duration

	sweepTicker *time.Ticker
	sweepStop   chan struct{}
}

// NewStore creates a store. A positive ttl starts the idle-session sweep.
func NewStore(ttl time.Duration) *Store {
	st := &Store{
		sessions: make(map[uuid.UUID]*entry),
		ttl:      ttl,
	}
	if ttl > 0 {
		st.sweepTicker = time.NewTicker(sweepInterval(ttl))
		st.sweepStop = make(chan struct{})
		go st.sweep()
	}
	return st
}

func sweepInterval(ttl time.Duration) time.Duration {
	return min(max(ttl/2, time.Second), 5*time.Minute)
}

// Add registers s and returns its view.
func (st *Store) Add(s *Session) types.SessionView {
	st.mu.Lock()
	st.sessions[s.ID] = &entry{session: s}
	st.mu.Unlock()
	return s.View()
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// View returns the current view of session id.
func (st *Store) View(id uuid.UUID) (types.SessionView, error) {
	var view types.SessionView
	err := st.Update(id, func(s *Session) error {
		view = s.View()
		return nil
	})
	return view, err
}

// Update runs fn with exclusive access to session id.
func (st *Store) Update(id uuid.UUID, fn func(*Session) error) error {
	e, err := st.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.session)
}

// Delete discards session id. Deleting an unknown id is not an error.
func (st *Store) Delete(id uuid.UUID) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// Reanalyze submits session id's edited text to analyzer. The session lock is released while
// the call is in flight so the session stays readable; a second Reanalyze in that window fails
// with ErrReanalysisInProgress. A failed call leaves the session as it was.
func (st *Store) Reanalyze(ctx context.Context, id uuid.UUID, analyzer analysis.Analyzer) (types.SessionView, error) {
	var req analysis.Request
	err := st.Update(id, func(s *Session) error {
		var err error
		req, err = s.BeginReanalysis()
		return err
	})
	if err != nil {
		return types.SessionView{}, err
	}

	result, callErr := analyzer.Analyze(ctx, req)

	var view types.SessionView
	err = st.Update(id, func(s *Session) error {
		s.FinishReanalysis(result, callErr)
		view = s.View()
		return nil
	})
	if callErr != nil {
		return view, callErr
	}
	return view, err
}

// Stop ends the idle-session sweep.
func (st *Store) Stop() {
	if st.sweepTicker != nil {
		st.sweepTicker.Stop()
	}
	if st.sweepStop != nil {
		close(st.sweepStop)
	}
}

func (st *Store) lookup(id uuid.UUID) (*entry, error) {
	st.mu.RLock()
	e, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e, nil
}

func (st *Store) sweep() {
	for {
		select {
		case <-st.sweepTicker.C:
			st.expire(time.Now().Add(-st.ttl))
		case <-st.sweepStop:
			return
		}
	}
}

// expire drops sessions last touched before cutoff, skipping ones with a re-analysis in flight.
func (st *Store) expire(cutoff time.Time) int {
	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, e := range st.sessions {
		e.mu.Lock()
		stale := e.session.UpdatedAt.Before(cutoff) && !e.session.reanalyzing
		e.mu.Unlock()
		if stale {
			delete(st.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		log.Printf("[editor] expired %d idle session(s)", removed)
	}
	return removed
}
