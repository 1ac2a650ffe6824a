package photo

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownOption is returned by Config.Set for a key that names no field.
var ErrUnknownOption = errors.New("unknown photo option")

const (
	OptionSize            = "size"
	OptionBackgroundColor = "background_color"
	OptionOutfit          = "outfit"
	OptionExpression      = "expression"
	OptionLighting        = "lighting"
)

// ExpressionOriginal keeps the subject's expression untouched.
const ExpressionOriginal = "original"

// Config holds the styling selections for one pas photo. Values are free
// text and flow into the prompt verbatim.
type Config struct {
	Size            string `json:"size"`
	BackgroundColor string `json:"background_color"`
	Outfit          string `json:"outfit"`
	Expression      string `json:"expression"`
	Lighting        string `json:"lighting"`
}

func DefaultConfig() Config {
	return Config{
		Size:            "3x4 cm",
		BackgroundColor: "blue",
		Outfit:          "Kemeja putih dan jas hitam",
		Expression:      ExpressionOriginal,
		Lighting:        "professional studio lighting",
	}
}

// Set replaces one field. Any value is accepted.
func (c *Config) Set(key, value string) error {
	switch normalizeKey(key) {
	case OptionSize:
		c.Size = value
	case OptionBackgroundColor:
		c.BackgroundColor = value
	case OptionOutfit:
		c.Outfit = value
	case OptionExpression:
		c.Expression = value
	case OptionLighting:
		c.Lighting = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOption, key)
	}
	return nil
}

// Get returns the value of one field.
func (c Config) Get(key string) (string, error) {
	switch normalizeKey(key) {
	case OptionSize:
		return c.Size, nil
	case OptionBackgroundColor:
		return c.BackgroundColor, nil
	case OptionOutfit:
		return c.Outfit, nil
	case OptionExpression:
		return c.Expression, nil
	case OptionLighting:
		return c.Lighting, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOption, key)
}

// OptionKeys lists the settable keys in form order.
func OptionKeys() []string {
	return []string{OptionSize, OptionBackgroundColor, OptionOutfit, OptionExpression, OptionLighting}
}

func normalizeKey(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	k = strings.ReplaceAll(k, "-", "_")
	switch k {
	case "backgroundcolor", "background", "bg", "color":
		return OptionBackgroundColor
	}
	return k
}
