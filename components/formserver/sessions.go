package formserver

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-leadforms/pkg/engine"
	"github.com/goliatone/go-leadforms/pkg/model"
)

// session holds one browser's engines, one per form. Handlers lock mu for
// the whole request because engines are not safe for concurrent use.
type session struct {
	id   string
	csrf string

	mu       sync.Mutex
	engines  map[string]*engine.Engine
	lastSeen time.Time
}

// engine returns the engine for form, creating it when missing or when the
// definition changed since it was built.
func (s *session) engine(form model.Form, opts []engine.Option) (*engine.Engine, error) {
	if eng, ok := s.engines[form.ID]; ok && eng.Form().Equal(form) {
		return eng, nil
	}
	eng, err := engine.New(form, opts...)
	if err != nil {
		return nil, err
	}
	s.engines[form.ID] = eng
	return eng, nil
}

func (s *session) discard(formID string) {
	delete(s.engines, formID)
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
	now      func() time.Time
}

func newSessionStore(ttl time.Duration, now func() time.Time) *sessionStore {
	return &sessionStore{
		sessions: make(map[string]*session),
		ttl:      ttl,
		now:      now,
	}
}

// lookup returns a live session and marks it as used.
func (s *sessionStore) lookup(id string) (*session, bool) {
	if id == "" {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if now.Sub(sess.lastSeen) > s.ttl {
		delete(s.sessions, id)
		return nil, false
	}
	sess.lastSeen = now
	return sess, true
}

func (s *sessionStore) create() *session {
	sess := &session{
		id:       uuid.NewString(),
		csrf:     uuid.NewString(),
		engines:  make(map[string]*engine.Engine),
		lastSeen: s.now(),
	}
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	return sess
}

// sweep drops idle sessions and reports how many were removed.
func (s *sessionStore) sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
