package session

import (
	"time"

	"github.com/KamiaGraphy/Kamia-Pas-Photo-Generator/internal/photo"
)

type Kind string

const (
	KindIdle       Kind = "idle"
	KindUploaded   Kind = "uploaded"
	KindGenerating Kind = "generating"
	KindFailed     Kind = "failed"
	KindSucceeded  Kind = "succeeded"
)

// Status is what the result pane shows. Exactly one case holds at a time.
type Status interface {
	Kind() Kind
	isStatus()
}

// Idle: no main photo, nothing to show but the placeholder.
type Idle struct{}

// Uploaded: a main photo is waiting to be edited.
type Uploaded struct{}

type Generating struct {
	Since time.Time
}

type Failed struct {
	Reason string
}

type Succeeded struct {
	Image photo.Image
}

func (Idle) Kind() Kind       { return KindIdle }
func (Uploaded) Kind() Kind   { return KindUploaded }
func (Generating) Kind() Kind { return KindGenerating }
func (Failed) Kind() Kind     { return KindFailed }
func (Succeeded) Kind() Kind  { return KindSucceeded }

func (Idle) isStatus()       {}
func (Uploaded) isStatus()   {}
func (Generating) isStatus() {}
func (Failed) isStatus()     {}
func (Succeeded) isStatus()  {}
