package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/KamiaGraphy/Kamia-Pas-Photo-Generator/internal/photo"
	"github.com/KamiaGraphy/Kamia-Pas-Photo-Generator/internal/session"
)

const (
	resultFilename = "kamia-pas-photo"
	maxOptionsBody = 64 << 10

	msgBusy        = "Foto sedang diproses. Tunggu hingga selesai."
	msgServerBusy  = "Server sedang sibuk. Coba lagi sebentar lagi."
	msgTooLarge    = "Ukuran file terlalu besar."
	msgMissingFile = "Pilih file untuk diunggah."
	msgNoResult    = "Belum ada foto hasil edit."
)

type apiError struct {
	Error string `json:"error"`
}

// slot is one of the three upload positions of a session.
type slot struct {
	path  string
	name  string
	set   func(*session.Session, *photo.Attachment)
	clear func(*session.Session)
}

var slots = []slot{
	{path: "/photo", name: "main", set: (*session.Session).SetMainPhoto, clear: (*session.Session).ClearMainPhoto},
	{path: "/outfit", name: "outfit_reference", set: (*session.Session).SetOutfitReference, clear: (*session.Session).ClearOutfitReference},
	{path: "/logo", name: "logo", set: (*session.Session).SetLogo, clear: (*session.Session).ClearLogo},
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": s.store.Len()})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(w, r)
	s.renderPage(w, http.StatusOK, s.store.Get(id), "")
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(w, r)
	writeJSON(w, http.StatusOK, newStateView(s.store.Get(id)))
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, photo.Presets())
}

func (s *Server) handleUpload(sl slot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := s.sessionID(w, r)

		data, name, status, msg := s.readUpload(w, r)
		if status != 0 {
			s.fail(w, r, id, status, msg)
			return
		}

		att, err := photo.DecodeUpload(name, data)
		if err != nil {
			s.fail(w, r, id, http.StatusBadRequest, err.Error())
			return
		}

		sess, _ := s.store.Update(id, func(sess *session.Session) error {
			sl.set(sess, att)
			return nil
		})
		s.logger.Info("upload stored", "session", id, "slot", sl.name, "mime", att.MIMEType, "bytes", len(att.Data))
		s.respond(w, r, sess)
	}
}

// readUpload returns a non-zero status with a user message when the
// multipart body has no usable file.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, int, string) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, "", http.StatusRequestEntityTooLarge, msgTooLarge
		}
		return nil, "", http.StatusBadRequest, msgMissingFile
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", http.StatusBadRequest, msgMissingFile
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return nil, "", http.StatusBadRequest, msgMissingFile
	}
	return buf.Bytes(), header.Filename, 0, ""
}

func (s *Server) handleClear(sl slot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := s.sessionID(w, r)
		sess, _ := s.store.Update(id, func(sess *session.Session) error {
			sl.clear(sess)
			return nil
		})
		s.respond(w, r, sess)
	}
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(w, r)

	r.Body = http.MaxBytesReader(w, r.Body, maxOptionsBody)
	if err := r.ParseForm(); err != nil {
		s.fail(w, r, id, http.StatusBadRequest, "invalid form")
		return
	}

	sess, err := s.store.Update(id, func(sess *session.Session) error {
		for _, key := range photo.OptionKeys() {
			values, ok := r.PostForm[key]
			if !ok || len(values) == 0 {
				continue
			}
			if err := sess.SetOption(key, values[0]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.fail(w, r, id, http.StatusBadRequest, err.Error())
		return
	}
	s.respond(w, r, sess)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(w, r)

	// Requests that cannot reach the generator are answered without waiting
	// for a slot.
	if err := s.store.Ready(id); err != nil {
		s.respondGenerate(w, r, id, err)
		return
	}

	waitCtx, waitCancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer waitCancel()
	if err := s.sem.Acquire(waitCtx, 1); err != nil {
		s.fail(w, r, id, http.StatusServiceUnavailable, msgServerBusy)
		return
	}
	defer s.sem.Release(1)

	// A reload of the page must not abort a running edit; the result lands in
	// the session either way.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), s.requestTimeout)
	defer cancel()

	start := time.Now()
	_, err := s.store.Generate(ctx, id, s.gen)
	s.logger.Info("generate finished",
		"session", id,
		"status", string(s.store.Get(id).Status.Kind()),
		"dur_ms", time.Since(start).Milliseconds(),
	)
	s.respondGenerate(w, r, id, err)
}

func (s *Server) respondGenerate(w http.ResponseWriter, r *http.Request, id string, err error) {
	sess := s.store.Get(id)
	switch {
	case errors.Is(err, session.ErrBusy):
		s.fail(w, r, id, http.StatusConflict, msgBusy)
	case errors.Is(err, session.ErrDiscarded):
		s.fail(w, r, id, http.StatusConflict, err.Error())
	case errors.Is(err, session.ErrNoMainPhoto):
		s.respondStatus(w, r, http.StatusBadRequest, sess, err.Error())
	case err != nil:
		s.logger.Error("generate failed", "session", id, "err", err)
		s.respondStatus(w, r, http.StatusBadGateway, sess, err.Error())
	default:
		s.respond(w, r, sess)
	}
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(w, r)
	sess := s.store.Get(id)
	img, ok := sess.Result()
	if !ok {
		respondError(w, r, http.StatusNotFound, msgNoResult)
		return
	}

	w.Header().Set("Content-Type", img.MIMEType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.Header().Set("Content-Disposition", `attachment; filename="`+resultFilename+img.Extension()+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.Data)
}

// respond answers a successful mutation: the session state as JSON, or a
// redirect back to the page for form posts.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, sess session.Session) {
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, newStateView(sess))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) respondStatus(w http.ResponseWriter, r *http.Request, status int, sess session.Session, msg string) {
	if wantsJSON(r) {
		writeJSON(w, status, apiError{Error: msg})
		return
	}
	// The failure is part of the session status, so the page shows it.
	s.renderPage(w, status, sess, "")
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, id string, status int, msg string) {
	if wantsJSON(r) {
		writeJSON(w, status, apiError{Error: msg})
		return
	}
	s.renderPage(w, status, s.store.Get(id), msg)
}

func (s *Server) renderPage(w http.ResponseWriter, status int, sess session.Session, notice string) {
	var buf bytes.Buffer
	if err := s.page.Execute(&buf, newPageData(sess, notice)); err != nil {
		s.logger.Error("render page failed", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func respondError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if wantsJSON(r) {
		writeJSON(w, status, apiError{Error: msg})
		return
	}
	http.Error(w, msg, status)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
