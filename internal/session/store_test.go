package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/KamiaGraphy/Kamia-Pas-Photo-Generator/internal/photo"
)

type fakeGenerator struct {
	mu      sync.Mutex
	calls   []photo.Request
	img     photo.Image
	err     error
	started chan struct{}
	release chan struct{}
}

func (f *fakeGenerator) EditPhoto(ctx context.Context, req photo.Request) (photo.Image, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()

	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	return f.img, f.err
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func upload(name string) *photo.Attachment {
	return &photo.Attachment{Name: name, MIMEType: "image/png", Data: []byte(name)}
}

func TestNewSessionDefaults(t *testing.T) {
	store := NewStore(Options{})
	sess := store.Get("a")

	require.Equal(t, "a", sess.ID)
	require.Equal(t, photo.DefaultConfig(), sess.Config)
	require.Equal(t, KindIdle, sess.Status.Kind())
	require.Nil(t, sess.Main)
}

func TestMainPhotoTransitions(t *testing.T) {
	store := NewStore(Options{})

	sess, err := store.Update("a", func(s *Session) error {
		s.SetMainPhoto(upload("face"))
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, KindUploaded, sess.Status.Kind())
	require.Contains(t, sess.Main.Preview(), "data:image/png;base64,")

	gen := &fakeGenerator{img: photo.Image{MIMEType: "image/png", Data: []byte("out")}}
	_, err = store.Generate(context.Background(), "a", gen)
	require.NoError(t, err)

	sess = store.Get("a")
	img, ok := sess.Result()
	require.True(t, ok)
	require.Equal(t, []byte("out"), img.Data)

	sess, _ = store.Update("a", func(s *Session) error {
		s.SetMainPhoto(upload("other"))
		return nil
	})
	require.Equal(t, KindUploaded, sess.Status.Kind())
	_, ok = sess.Result()
	require.False(t, ok)

	sess, _ = store.Update("a", func(s *Session) error {
		s.ClearMainPhoto()
		return nil
	})
	require.Equal(t, KindIdle, sess.Status.Kind())
}

func TestOptionalUploadsAreIndependent(t *testing.T) {
	store := NewStore(Options{})
	gen := &fakeGenerator{img: photo.Image{MIMEType: "image/png", Data: []byte("out")}}

	store.Update("a", func(s *Session) error {
		s.SetMainPhoto(upload("face"))
		return nil
	})
	_, err := store.Generate(context.Background(), "a", gen)
	require.NoError(t, err)

	sess, _ := store.Update("a", func(s *Session) error {
		s.SetOutfitReference(upload("outfit"))
		s.SetLogo(upload("logo"))
		return nil
	})
	require.Equal(t, KindSucceeded, sess.Status.Kind())
	require.NotNil(t, sess.Outfit)
	require.NotNil(t, sess.Logo)

	sess, _ = store.Update("a", func(s *Session) error {
		s.ClearOutfitReference()
		s.ClearLogo()
		return nil
	})
	require.Equal(t, KindSucceeded, sess.Status.Kind())
	require.Nil(t, sess.Outfit)
	require.Nil(t, sess.Logo)
	require.NotNil(t, sess.Main)
}

func TestGenerateWithoutMainPhoto(t *testing.T) {
	store := NewStore(Options{})
	gen := &fakeGenerator{}

	store.Update("a", func(s *Session) error {
		s.SetOutfitReference(upload("outfit"))
		return nil
	})

	_, err := store.Generate(context.Background(), "a", gen)
	require.ErrorIs(t, err, ErrNoMainPhoto)
	require.Equal(t, 0, gen.callCount())

	sess := store.Get("a")
	require.Equal(t, Failed{Reason: "Silakan unggah foto terlebih dahulu."}, sess.Status)
}

func TestGenerateSendsOrderedRequest(t *testing.T) {
	store := NewStore(Options{})
	gen := &fakeGenerator{img: photo.Image{MIMEType: "image/png", Data: []byte("out")}}

	store.Update("a", func(s *Session) error {
		require.NoError(t, s.SetOption("expression", "a neutral expression"))
		s.SetLogo(upload("logo"))
		s.SetMainPhoto(upload("face"))
		return nil
	})

	_, err := store.Generate(context.Background(), "a", gen)
	require.NoError(t, err)
	require.Equal(t, 1, gen.callCount())

	req := gen.calls[0]
	require.Len(t, req.Images, 2)
	require.Equal(t, "face", req.Images[0].Name)
	require.Equal(t, "logo", req.Images[1].Name)
	require.Contains(t, req.Prompt, "logo from the second image")
	require.Contains(t, req.Prompt, "make it a neutral expression")
}

func TestGenerateFailureKeepsInput(t *testing.T) {
	store := NewStore(Options{})
	gen := &fakeGenerator{err: errors.New("upstream exploded")}

	store.Update("a", func(s *Session) error {
		s.SetMainPhoto(upload("face"))
		return s.SetOption("size", "4x6 cm")
	})

	_, err := store.Generate(context.Background(), "a", gen)
	require.EqualError(t, err, "upstream exploded")

	sess := store.Get("a")
	require.Equal(t, Failed{Reason: "upstream exploded"}, sess.Status)
	require.False(t, sess.Generating())
	require.NotNil(t, sess.Main)
	require.Equal(t, "4x6 cm", sess.Config.Size)

	gen.err = nil
	gen.img = photo.Image{MIMEType: "image/png", Data: []byte("retry")}
	_, err = store.Generate(context.Background(), "a", gen)
	require.NoError(t, err)
	require.Equal(t, KindSucceeded, store.Get("a").Status.Kind())
}

func TestGenerateRejectsConcurrentCall(t *testing.T) {
	store := NewStore(Options{})
	gen := &fakeGenerator{
		img:     photo.Image{MIMEType: "image/png", Data: []byte("out")},
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	store.Update("a", func(s *Session) error {
		s.SetMainPhoto(upload("face"))
		return nil
	})

	done := make(chan error, 1)
	go func() {
		_, err := store.Generate(context.Background(), "a", gen)
		done <- err
	}()
	<-gen.started

	require.Equal(t, KindGenerating, store.Get("a").Status.Kind())
	_, err := store.Generate(context.Background(), "a", gen)
	require.ErrorIs(t, err, ErrBusy)

	close(gen.release)
	require.NoError(t, <-done)
	require.Equal(t, 1, gen.callCount())
	require.Equal(t, KindSucceeded, store.Get("a").Status.Kind())
}

type generateResult struct {
	img photo.Image
	err error
}

func startGenerate(store *Store, id string, gen Generator) <-chan generateResult {
	done := make(chan generateResult, 1)
	go func() {
		img, err := store.Generate(context.Background(), id, gen)
		done <- generateResult{img: img, err: err}
	}()
	return done
}

func TestGenerateDiscardsResultForClearedPhoto(t *testing.T) {
	store := NewStore(Options{})
	gen := &fakeGenerator{
		img:     photo.Image{MIMEType: "image/png", Data: []byte("stale")},
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	store.Update("a", func(s *Session) error {
		s.SetMainPhoto(upload("face"))
		return nil
	})

	done := startGenerate(store, "a", gen)
	<-gen.started

	sess, _ := store.Update("a", func(s *Session) error {
		s.ClearMainPhoto()
		return nil
	})
	require.Equal(t, KindGenerating, sess.Status.Kind())

	close(gen.release)
	res := <-done
	require.ErrorIs(t, res.err, ErrDiscarded)
	require.True(t, res.img.IsZero())
	require.Equal(t, KindIdle, store.Get("a").Status.Kind())
}

func TestGenerateDiscardsResultForReplacedPhoto(t *testing.T) {
	store := NewStore(Options{})
	gen := &fakeGenerator{
		img:     photo.Image{MIMEType: "image/png", Data: []byte("stale")},
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	store.Update("a", func(s *Session) error {
		s.SetMainPhoto(upload("face"))
		return nil
	})

	done := startGenerate(store, "a", gen)
	<-gen.started

	store.Update("a", func(s *Session) error {
		s.SetMainPhoto(upload("new"))
		return nil
	})

	close(gen.release)
	res := <-done
	require.ErrorIs(t, res.err, ErrDiscarded)
	require.True(t, res.img.IsZero())

	sess := store.Get("a")
	require.Equal(t, KindUploaded, sess.Status.Kind())
	_, ok := sess.Result()
	require.False(t, ok)
	require.Equal(t, []byte("new"), sess.Main.Data)
}

type panicGenerator struct{}

func (panicGenerator) EditPhoto(context.Context, photo.Request) (photo.Image, error) {
	panic("boom")
}

func TestGenerateNeverLeavesGeneratingOnPanic(t *testing.T) {
	store := NewStore(Options{})
	store.Update("a", func(s *Session) error {
		s.SetMainPhoto(upload("face"))
		return nil
	})

	require.Panics(t, func() {
		_, _ = store.Generate(context.Background(), "a", panicGenerator{})
	})

	sess := store.Get("a")
	require.Equal(t, KindFailed, sess.Status.Kind())
	require.False(t, sess.Generating())
}

func TestSweep(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore(Options{Now: func() time.Time { return now }})

	store.Get("old")
	now = now.Add(2 * time.Hour)
	store.Get("fresh")

	require.Equal(t, 1, store.Sweep(time.Hour))
	require.Equal(t, 1, store.Len())

	store.Delete("fresh")
	require.Equal(t, 0, store.Len())
}

func TestReady(t *testing.T) {
	store := NewStore(Options{})

	require.ErrorIs(t, store.Ready("a"), ErrNoMainPhoto)
	require.Equal(t, KindFailed, store.Get("a").Status.Kind())

	store.Update("a", func(s *Session) error {
		s.SetMainPhoto(upload("face"))
		return nil
	})
	require.NoError(t, store.Ready("a"))

	gen := &fakeGenerator{started: make(chan struct{}, 1), release: make(chan struct{})}
	done := startGenerate(store, "a", gen)
	<-gen.started
	require.ErrorIs(t, store.Ready("a"), ErrBusy)

	close(gen.release)
	require.NoError(t, (<-done).err)
	require.Equal(t, 1, gen.callCount())

	_, ok := store.Get("a").Result()
	require.True(t, ok)
}
