package server

import (
	"sync"
	"time"

	"github.com/jonathan/resume-tailor/internal/types"
)

// session is one run held between evaluation and generation.
type session struct {
	state     *types.RunState
	owner     string
	busy      bool
	pending   bool
	createdAt time.Time
}

// sessionStore is the in-memory registry of paused and finished runs.
// Sessions live until the process exits.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
	now      func() time.Time
}

func newSessionStore() *sessionStore {
	return &sessionStore{
		sessions: make(map[string]*session),
		now:      time.Now,
	}
}

// put stores a copy of state under its run ID, replacing any earlier session with that ID.
func (s *sessionStore) put(owner string, state *types.RunState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[state.ID] = &session{state: state.Clone(), owner: owner, createdAt: s.now()}
}

// get returns a copy of the session state. Sessions owned by another client are reported as missing.
func (s *sessionStore) get(id, owner string) (*types.RunState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || sess.owner != owner {
		return nil, &ErrSessionNotFound{ID: id}
	}
	return sess.state.Clone(), nil
}

// acquire marks the session busy and returns its state. At most one generation runs per session.
func (s *sessionStore) acquire(id, owner string) (*types.RunState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || sess.owner != owner {
		return nil, &ErrSessionNotFound{ID: id}
	}
	if sess.busy {
		return nil, &ErrSessionBusy{ID: id}
	}
	sess.busy = true
	return sess.state.Clone(), nil
}

// release clears the busy flag and, when state is non-nil, stores it as the session's latest state.
func (s *sessionStore) release(id string, state *types.RunState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return
	}
	sess.busy = false
	if state != nil {
		sess.state = state.Clone()
		sess.pending = false
	}
}

// releasePending stores a finished state whose files and record could not be published.
// The next generate request publishes it without running the stages again.
func (s *sessionStore) releasePending(id string, state *types.RunState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return
	}
	sess.busy = false
	sess.state = state.Clone()
	sess.pending = true
}

// publishPending reports whether the session holds a finished run that still needs publishing.
func (s *sessionStore) publishPending(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	return ok && sess.pending
}

// delete removes a session that is not generating.
func (s *sessionStore) delete(id, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || sess.owner != owner {
		return &ErrSessionNotFound{ID: id}
	}
	if sess.busy {
		return &ErrSessionBusy{ID: id}
	}
	delete(s.sessions, id)
	return nil
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
