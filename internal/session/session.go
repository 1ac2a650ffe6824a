package session

import (
	"time"

	"github.com/KamiaGraphy/Kamia-Pas-Photo-Generator/internal/photo"
)

// Session is one user's editor: styling options, the uploaded images and
// the current result pane status. Attachments are never mutated once stored,
// so copies of a Session may share them.
type Session struct {
	ID           string
	Config       photo.Config
	Main         *photo.Attachment
	Outfit       *photo.Attachment
	Logo         *photo.Attachment
	Status       Status
	LastActivity time.Time

	// mainRev changes whenever the main photo is replaced or cleared.
	mainRev uint64
}

func newSession(id string, now time.Time) *Session {
	return &Session{
		ID:           id,
		Config:       photo.DefaultConfig(),
		Status:       Idle{},
		LastActivity: now,
	}
}

func (s *Session) SetOption(key, value string) error {
	return s.Config.Set(key, value)
}

// SetMainPhoto replaces the main photo and drops any earlier result or error.
func (s *Session) SetMainPhoto(a *photo.Attachment) {
	if a == nil {
		s.ClearMainPhoto()
		return
	}
	s.Main = a
	s.mainRev++
	if !s.Generating() {
		s.Status = Uploaded{}
	}
}

func (s *Session) ClearMainPhoto() {
	s.Main = nil
	s.mainRev++
	if !s.Generating() {
		s.Status = Idle{}
	}
}

func (s *Session) SetOutfitReference(a *photo.Attachment) { s.Outfit = a }
func (s *Session) ClearOutfitReference()                  { s.Outfit = nil }
func (s *Session) SetLogo(a *photo.Attachment)            { s.Logo = a }
func (s *Session) ClearLogo()                             { s.Logo = nil }

func (s Session) Generating() bool {
	_, ok := s.Status.(Generating)
	return ok
}

// Result returns the generated image, if the session holds one.
func (s Session) Result() (photo.Image, bool) {
	if st, ok := s.Status.(Succeeded); ok {
		return st.Image, true
	}
	return photo.Image{}, false
}

func (s Session) restingStatus() Status {
	if s.Main != nil {
		return Uploaded{}
	}
	return Idle{}
}
