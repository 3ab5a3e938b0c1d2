package state

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"storefront/models"
)

const (
	TokenKey = "token"
	UserKey  = "user"
)

// Session is the signed-in user and their token. It hydrates from the store
// in the background; Loading reports true until that finishes.
type Session struct {
	store Store
	log   *slog.Logger
	ready chan struct{}

	mu    sync.RWMutex
	user  *models.PublicUser
	token string
}

func NewSession(store Store, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	s := &Session{store: store, log: log, ready: make(chan struct{})}
	go s.hydrate()
	return s
}

func (s *Session) hydrate() {
	defer close(s.ready)

	token, ok, err := s.store.Load(TokenKey)
	if err != nil {
		s.log.Warn("load token", "error", err)
		return
	}
	if !ok {
		return
	}

	var user *models.PublicUser
	data, ok, err := s.store.Load(UserKey)
	switch {
	case err != nil:
		s.log.Warn("load user", "error", err)
	case ok:
		var u models.PublicUser
		if err := json.Unmarshal(data, &u); err != nil {
			s.log.Warn("stored user is corrupt, ignoring it", "error", err)
		} else {
			user = &u
		}
	}

	s.mu.Lock()
	s.token = string(token)
	s.user = user
	s.mu.Unlock()
}

func (s *Session) Loading() bool {
	select {
	case <-s.ready:
		return false
	default:
		return true
	}
}

// Wait blocks until hydration has finished or ctx is done.
func (s *Session) Wait(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Login persists the token and user, then swaps them in. If the user cannot
// be saved the token is cleared again and the session is unchanged.
func (s *Session) Login(user models.PublicUser, token string) error {
	<-s.ready

	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Save(TokenKey, []byte(token)); err != nil {
		return err
	}
	if err := s.store.Save(UserKey, data); err != nil {
		s.rollbackToken()
		return err
	}
	s.token = token
	s.user = &user
	return nil
}

func (s *Session) rollbackToken() {
	var err error
	if s.token == "" {
		err = s.store.Clear(TokenKey)
	} else {
		err = s.store.Save(TokenKey, []byte(s.token))
	}
	if err != nil {
		s.log.Warn("restore token", "error", err)
	}
}

// Logout clears the stored token and user. The session stays signed in if
// either cannot be cleared.
func (s *Session) Logout() error {
	<-s.ready

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Clear(TokenKey); err != nil {
		return err
	}
	if err := s.store.Clear(UserKey); err != nil {
		s.rollbackToken()
		return err
	}
	s.token = ""
	s.user = nil
	return nil
}

func (s *Session) IsAuthenticated() bool {
	return s.Token() != ""
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the signed-in user, or false when there is none.
func (s *Session) User() (models.PublicUser, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.PublicUser{}, false
	}
	return *s.user, true
}
