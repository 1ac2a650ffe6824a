package photo

import "errors"

var ErrMissingMainPhoto = errors.New("main photo is required")

// Request is one generation attempt: images in send order plus the
// instruction text.
type Request struct {
	Config Config
	Layout Layout
	Images []Attachment
	Prompt string
}

// NewRequest orders the attachments (main, outfit reference, logo) and
// composes the matching instruction. outfit and logo may be nil.
func NewRequest(cfg Config, main, outfit, logo *Attachment) (Request, error) {
	if main == nil || len(main.Data) == 0 {
		return Request{}, ErrMissingMainPhoto
	}

	layout := Layout{
		HasOutfitReference: outfit != nil,
		HasLogo:            logo != nil,
	}

	images := make([]Attachment, 0, layout.ImageCount())
	images = append(images, *main)
	if outfit != nil {
		images = append(images, *outfit)
	}
	if logo != nil {
		images = append(images, *logo)
	}

	return Request{
		Config: cfg,
		Layout: layout,
		Images: images,
		Prompt: BuildPrompt(cfg, layout),
	}, nil
}
