package photo

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"mime"

	_ "golang.org/x/image/webp"
)

var (
	ErrEmptyUpload  = errors.New("uploaded file is empty")
	ErrInvalidImage = errors.New("uploaded file is not a readable image")
)

// Attachment is an image sent alongside the instruction.
type Attachment struct {
	Name     string
	MIMEType string
	Data     []byte
	Width    int
	Height   int
}

// Preview returns a renderable data URL of the raw bytes.
func (a *Attachment) Preview() string {
	if a == nil {
		return ""
	}
	return DataURL(a.MIMEType, a.Data)
}

// Image is a generated result.
type Image struct {
	MIMEType string
	Data     []byte
}

func (img Image) DataURL() string {
	return DataURL(img.MIMEType, img.Data)
}

func (img Image) IsZero() bool {
	return len(img.Data) == 0
}

// Extension returns a file extension (with dot) for the image type.
func (img Image) Extension() string {
	switch img.MIMEType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	}
	if exts, _ := mime.ExtensionsByType(img.MIMEType); len(exts) > 0 {
		return exts[0]
	}
	return ".png"
}

// DecodeUpload turns raw uploaded bytes into an attachment. The image header
// must decode; the MIME type comes from the decoded format rather than from
// whatever the client declared.
func DecodeUpload(name string, data []byte) (*Attachment, error) {
	if len(data) == 0 {
		return nil, ErrEmptyUpload
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidImage, name, err)
	}

	return &Attachment{
		Name:     name,
		MIMEType: "image/" + format,
		Data:     data,
		Width:    cfg.Width,
		Height:   cfg.Height,
	}, nil
}

func DataURL(mimeType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}
