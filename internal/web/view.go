package web

import (
	"html/template"
	"time"

	"github.com/KamiaGraphy/Kamia-Pas-Photo-Generator/internal/photo"
	"github.com/KamiaGraphy/Kamia-Pas-Photo-Generator/internal/session"
)

type uploadView struct {
	Name     string `json:"name"`
	MIMEType string `json:"mime_type"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Preview  string `json:"preview"`
}

type statusView struct {
	Kind   session.Kind `json:"kind"`
	Error  string       `json:"error,omitempty"`
	Result string       `json:"result,omitempty"`
	Since  *time.Time   `json:"since,omitempty"`
}

type stateView struct {
	Config photo.Config `json:"config"`
	Labels photo.Config `json:"labels"`
	Main   *uploadView  `json:"main,omitempty"`
	Outfit *uploadView  `json:"outfit_reference,omitempty"`
	Logo   *uploadView  `json:"logo,omitempty"`
	Status statusView   `json:"status"`
}

func newStateView(sess session.Session) stateView {
	return stateView{
		Config: sess.Config,
		Labels: labels(sess.Config),
		Main:   newUploadView(sess.Main),
		Outfit: newUploadView(sess.Outfit),
		Logo:   newUploadView(sess.Logo),
		Status: newStatusView(sess.Status),
	}
}

func newUploadView(a *photo.Attachment) *uploadView {
	if a == nil {
		return nil
	}
	return &uploadView{
		Name:     a.Name,
		MIMEType: a.MIMEType,
		Width:    a.Width,
		Height:   a.Height,
		Preview:  a.Preview(),
	}
}

func newStatusView(st session.Status) statusView {
	if st == nil {
		return statusView{Kind: session.KindIdle}
	}

	out := statusView{Kind: st.Kind()}
	switch v := st.(type) {
	case session.Failed:
		out.Error = v.Reason
	case session.Succeeded:
		out.Result = v.Image.DataURL()
	case session.Generating:
		since := v.Since
		out.Since = &since
	}
	return out
}

func labels(cfg photo.Config) photo.Config {
	return photo.Config{
		Size:            photo.Label(photo.OptionSize, cfg.Size),
		BackgroundColor: photo.Label(photo.OptionBackgroundColor, cfg.BackgroundColor),
		Outfit:          photo.Label(photo.OptionOutfit, cfg.Outfit),
		Expression:      photo.Label(photo.OptionExpression, cfg.Expression),
		Lighting:        photo.Label(photo.OptionLighting, cfg.Lighting),
	}
}

// Page data. Data URLs are produced here from decoded uploads, so they are
// marked safe for src attributes.

type pageUpload struct {
	Action  string
	Name    string
	Preview template.URL
}

type pageStatus struct {
	Kind  session.Kind
	Error string
}

type pageData struct {
	Notice  string
	Config  photo.Config
	Presets photo.Catalog
	Main    pageUpload
	Outfit  pageUpload
	Logo    pageUpload
	Status  pageStatus
	Result  template.URL
}

func newPageData(sess session.Session, notice string) pageData {
	view := newStateView(sess)

	data := pageData{
		Notice:  notice,
		Config:  sess.Config,
		Presets: photo.Presets(),
		Main:    newPageUpload("/photo", view.Main),
		Outfit:  newPageUpload("/outfit", view.Outfit),
		Logo:    newPageUpload("/logo", view.Logo),
		Status:  pageStatus{Kind: view.Status.Kind, Error: view.Status.Error},
	}
	if view.Status.Result != "" {
		data.Result = template.URL(view.Status.Result)
	}
	return data
}

func newPageUpload(action string, u *uploadView) pageUpload {
	out := pageUpload{Action: action}
	if u != nil {
		out.Name = u.Name
		out.Preview = template.URL(u.Preview)
	}
	return out
}
