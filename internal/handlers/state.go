package handlers

import (
	"sync"
	"time"
)

type menu string

const (
	menuMain       menu = "main"
	menuSize       menu = "size"
	menuColor      menu = "color"
	menuOutfit     menu = "outfit"
	menuExpression menu = "expression"
	menuLighting   menu = "lighting"
)

type awaiting int

const (
	awaitNone awaiting = iota
	awaitMain
	awaitOutfit
	awaitLogo
	awaitOutfitText
)

// wizardState is the per chat and user UI state of the inline keyboard.
// The editing data itself lives in the session store.
type wizardState struct {
	MessageID int
	Menu      menu
	Awaiting  awaiting
	UpdatedAt time.Time
}

type stateKey struct {
	ChatID int64
	UserID int64
}

type stateStore struct {
	mu  sync.Mutex
	m   map[stateKey]*wizardState
	now func() time.Time
}

func newStateStore(now func() time.Time) *stateStore {
	if now == nil {
		now = time.Now
	}
	return &stateStore{m: make(map[stateKey]*wizardState), now: now}
}

func (s *stateStore) Get(chatID, userID int64) wizardState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return *s.getOrCreateLocked(chatID, userID)
}

func (s *stateStore) Update(chatID, userID int64, fn func(*wizardState)) wizardState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.getOrCreateLocked(chatID, userID)
	if fn != nil {
		fn(st)
	}
	st.UpdatedAt = s.now()
	return *st
}

// Sweep removes states untouched for longer than maxIdle.
func (s *stateStore) Sweep(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxIdle)
	removed := 0
	for key, st := range s.m {
		if st.UpdatedAt.Before(cutoff) {
			delete(s.m, key)
			removed++
		}
	}
	return removed
}

func (s *stateStore) getOrCreateLocked(chatID, userID int64) *wizardState {
	key := stateKey{ChatID: chatID, UserID: userID}
	if st, ok := s.m[key]; ok {
		return st
	}
	st := &wizardState{Menu: menuMain, UpdatedAt: s.now()}
	s.m[key] = st
	return st
}
