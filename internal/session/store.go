package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/KamiaGraphy/Kamia-Pas-Photo-Generator/internal/photo"
)

var (
	ErrNoMainPhoto = errors.New("Silakan unggah foto terlebih dahulu.")
	ErrBusy        = errors.New("a generation is already running for this session")
	ErrDiscarded   = errors.New("Foto diganti saat proses berjalan; hasil lama dibuang.")

	errInterrupted = errors.New("generation was interrupted")
)

// Generator performs one edit call against the image service.
type Generator interface {
	EditPhoto(ctx context.Context, req photo.Request) (photo.Image, error)
}

type Options struct {
	Now func() time.Time
}

type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewStore(opts Options) *Store {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Store{
		sessions: make(map[string]*Session),
		now:      now,
	}
}

// Get returns a copy of the session, creating it with defaults if needed.
func (s *Store) Get(id string) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreateLocked(id)
	return *sess
}

// Update applies fn to the session under the store lock and returns the
// resulting copy. An error from fn is returned as is; changes fn made before
// failing are kept.
func (s *Store) Update(id string, fn func(*Session) error) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreateLocked(id)
	sess.LastActivity = s.now()

	var err error
	if fn != nil {
		err = fn(sess)
	}
	return *sess, err
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}

// Sweep drops sessions idle for longer than maxIdle and returns how many
// were removed. Sessions with a generation in flight are kept.
func (s *Store) Sweep(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxIdle)
	removed := 0
	for id, sess := range s.sessions {
		if sess.Generating() || sess.LastActivity.After(cutoff) {
			continue
		}
		delete(s.sessions, id)
		removed++
	}
	return removed
}

// Generate runs one generation for the session. Without a main photo it
// fails before gen is called. A second call while one is in flight gets
// ErrBusy. If the main photo changed while gen was running the result is
// dropped and ErrDiscarded is returned. The Generating status is always
// replaced when gen returns, even if it panics.
func (s *Store) Generate(ctx context.Context, id string, gen Generator) (img photo.Image, err error) {
	s.mu.Lock()
	sess := s.getOrCreateLocked(id)
	sess.LastActivity = s.now()

	if err := s.readyLocked(sess); err != nil {
		s.mu.Unlock()
		return photo.Image{}, err
	}

	req, err := photo.NewRequest(sess.Config, sess.Main, sess.Outfit, sess.Logo)
	if err != nil {
		sess.Status = Failed{Reason: err.Error()}
		s.mu.Unlock()
		return photo.Image{}, err
	}

	rev := sess.mainRev
	sess.Status = Generating{Since: s.now()}
	s.mu.Unlock()

	genErr := errInterrupted
	defer func() {
		if !s.finish(id, rev, img, genErr) {
			img, err = photo.Image{}, ErrDiscarded
		}
	}()

	img, genErr = gen.EditPhoto(ctx, req)
	return img, genErr
}

// Ready reports ErrBusy or ErrNoMainPhoto when a Generate call for the
// session would fail before reaching the generator, recording the failure the
// same way. A nil result is only a hint; Generate checks again.
func (s *Store) Ready(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreateLocked(id)
	sess.LastActivity = s.now()
	return s.readyLocked(sess)
}

func (s *Store) readyLocked(sess *Session) error {
	if sess.Generating() {
		return ErrBusy
	}
	if sess.Main == nil {
		sess.Status = Failed{Reason: ErrNoMainPhoto.Error()}
		return ErrNoMainPhoto
	}
	return nil
}

// finish records the outcome and reports whether it was kept.
func (s *Store) finish(id string, rev uint64, img photo.Image, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return false
	}
	sess.LastActivity = s.now()

	switch {
	case sess.mainRev != rev:
		// The photo changed while the call was running; its result no
		// longer matches what the user sees.
		sess.Status = sess.restingStatus()
		return false
	case err != nil:
		sess.Status = Failed{Reason: err.Error()}
	default:
		sess.Status = Succeeded{Image: img}
	}
	return true
}

func (s *Store) getOrCreateLocked(id string) *Session {
	if sess, ok := s.sessions[id]; ok {
		return sess
	}

	sess := newSession(id, s.now())
	s.sessions[id] = sess
	return sess
}
