package handlers

import (
	"strings"
)

type slot int

const (
	slotMain slot = iota
	slotOutfit
	slotLogo
)

var albumSlots = []slot{slotMain, slotOutfit, slotLogo}

func (s slot) String() string {
	switch s {
	case slotOutfit:
		return "outfit"
	case slotLogo:
		return "logo"
	}
	return "main"
}

func (s slot) label() string {
	switch s {
	case slotOutfit:
		return "Referensi outfit"
	case slotLogo:
		return "Logo"
	}
	return "Foto utama"
}

func parseSlot(value string) (slot, bool) {
	switch value {
	case "main":
		return slotMain, true
	case "outfit":
		return slotOutfit, true
	case "logo":
		return slotLogo, true
	}
	return slotMain, false
}

func (a awaiting) slot() (slot, bool) {
	switch a {
	case awaitMain:
		return slotMain, true
	case awaitOutfit:
		return slotOutfit, true
	case awaitLogo:
		return slotLogo, true
	}
	return slotMain, false
}

func awaitFor(s slot) awaiting {
	switch s {
	case slotOutfit:
		return awaitOutfit
	case slotLogo:
		return awaitLogo
	}
	return awaitMain
}

var captionSlots = map[string]slot{
	"outfit":    slotOutfit,
	"baju":      slotOutfit,
	"referensi": slotOutfit,
	"ref":       slotOutfit,
	"logo":      slotLogo,
}

// slotFromCaption picks the upload slot from the first word of a photo
// caption and returns the rest of the caption. Anything else is the main
// photo, with the whole caption left for option parsing.
func slotFromCaption(caption string) (slot, string) {
	caption = strings.TrimSpace(caption)
	if caption == "" {
		return slotMain, ""
	}

	first, rest, _ := strings.Cut(caption, " ")
	word := strings.ToLower(strings.TrimRight(first, ":,.-"))
	if s, ok := captionSlots[word]; ok {
		rest = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(rest), ":-"))
		return s, rest
	}
	return slotMain, caption
}
