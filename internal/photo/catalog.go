package photo

import (
	"strings"
	"unicode"
)

type NamedOption struct {
	Key  string `json:"value"`
	Name string `json:"label"`
}

type ColorOption struct {
	NamedOption
	Swatch string `json:"swatch"`
}

var sizes = []NamedOption{
	{Key: "2x3 cm", Name: "2x3 cm"},
	{Key: "3x4 cm", Name: "3x4 cm"},
	{Key: "4x6 cm", Name: "4x6 cm"},
	{Key: "5x5 cm", Name: "5x5 cm"},
}

var backgroundColors = []ColorOption{
	{NamedOption{Key: "red", Name: "Red"}, "#dc2626"},
	{NamedOption{Key: "blue", Name: "Blue"}, "#2563eb"},
	{NamedOption{Key: "dark blue", Name: "Biru Gelap"}, "#1e3a8a"},
	{NamedOption{Key: "white", Name: "White"}, "#ffffff"},
	{NamedOption{Key: "gray", Name: "Gray"}, "#9ca3af"},
	{NamedOption{Key: "dark gray", Name: "Abu-abu Gelap"}, "#1f2937"},
	{NamedOption{Key: "black", Name: "Hitam"}, "#000000"},
}

var expressions = []NamedOption{
	{Key: ExpressionOriginal, Name: "Asli (dari foto awal)"},
	{Key: "a neutral expression", Name: "Netral"},
	{Key: "a slight, closed-mouth smile", Name: "Sedikit Tersenyum"},
}

var lightings = []NamedOption{
	{Key: "professional studio lighting", Name: "Studio Standar"},
	{Key: "soft natural lighting", Name: "Pencahayaan Alami"},
	{Key: "softbox lighting effect", Name: "Efek Lampu Softbox"},
	{Key: "Rembrandt lighting, creating a small triangle of light on the cheek opposite the main light source", Name: "Rembrandt Lighting"},
	{Key: "butterfly lighting, creating a butterfly-shaped shadow under the nose", Name: "Butterfly Lighting"},
	{Key: "split lighting, where one side of the face is well-lit and the other is in shadow", Name: "Split Lighting"},
	{Key: "loop lighting, creating a small loop-shaped shadow of the nose on the cheek", Name: "Loop Lighting"},
}

var outfits = []NamedOption{
	{Key: "Seragam SMA perempuan berhijab, dengan kemeja putih lengan panjang, rok abu-abu panjang, dasi abu-abu, dan jilbab putih rapi", Name: "SMA Putri (Hijab)"},
	{Key: "Seragam SMA perempuan non-hijab, dengan kemeja putih lengan pendek, rok abu-abu di bawah lutut, dan dasi abu-abu rapi", Name: "SMA Putri (Non-Hijab)"},
	{Key: "Seragam SMA laki-laki, dengan kemeja putih lengan pendek, celana panjang abu-abu, dan dasi abu-abu rapi", Name: "SMA Putra"},
	{Key: "Seragam SMP perempuan berhijab, dengan kemeja putih lengan panjang, rompi biru, dasi biru, dan jilbab putih rapi", Name: "SMP Putri (Hijab)"},
	{Key: "Seragam SMP perempuan non-hijab, dengan kemeja putih lengan pendek, rok biru di bawah lutut, dan dasi biru rapi", Name: "SMP Putri (Non-Hijab)"},
	{Key: "Seragam SMP laki-laki, dengan kemeja putih lengan pendek, celana pendek biru, dan dasi biru rapi", Name: "SMP Putra"},
	{Key: "Seragam SD perempuan berhijab, dengan kemeja putih lengan panjang, rok merah panjang, dasi merah, dan jilbab putih rapi", Name: "SD Putri (Hijab)"},
	{Key: "Seragam SD perempuan non-hijab, dengan kemeja putih lengan pendek, rok merah di bawah lutut, dan dasi merah rapi", Name: "SD Putri (Non-Hijab)"},
	{Key: "Seragam SD laki-laki, dengan kemeja putih lengan pendek, celana pendek merah, dan dasi merah rapi", Name: "SD Putra"},
}

func Sizes() []NamedOption       { return append([]NamedOption(nil), sizes...) }
func Expressions() []NamedOption { return append([]NamedOption(nil), expressions...) }
func Lightings() []NamedOption   { return append([]NamedOption(nil), lightings...) }
func Outfits() []NamedOption     { return append([]NamedOption(nil), outfits...) }

func BackgroundColors() []ColorOption {
	return append([]ColorOption(nil), backgroundColors...)
}

// Catalog groups every preset list, keyed by option name.
type Catalog struct {
	Sizes            []NamedOption `json:"size"`
	BackgroundColors []ColorOption `json:"background_color"`
	Outfits          []NamedOption `json:"outfit"`
	Expressions      []NamedOption `json:"expression"`
	Lightings        []NamedOption `json:"lighting"`
}

func Presets() Catalog {
	return Catalog{
		Sizes:            Sizes(),
		BackgroundColors: BackgroundColors(),
		Outfits:          Outfits(),
		Expressions:      Expressions(),
		Lightings:        Lightings(),
	}
}

// Options returns the presets for one option key. Outfit is free text, so
// its presets are suggestions only.
func Options(key string) []NamedOption {
	switch normalizeKey(key) {
	case OptionSize:
		return Sizes()
	case OptionBackgroundColor:
		out := make([]NamedOption, 0, len(backgroundColors))
		for _, c := range backgroundColors {
			out = append(out, c.NamedOption)
		}
		return out
	case OptionOutfit:
		return Outfits()
	case OptionExpression:
		return Expressions()
	case OptionLighting:
		return Lightings()
	}
	return nil
}

// Label returns the preset label for a value, or the value itself when it
// is custom text.
func Label(key, value string) string {
	for _, o := range Options(key) {
		if o.Key == value {
			return o.Name
		}
	}
	return value
}

// ParseArgs applies leading option tokens ("3x4", "red", "smile",
// "rembrandt", "size=4x6") on top of cfg. The first token that matches no
// preset starts the outfit description, which is kept verbatim, as is
// everything after "outfit=".
func ParseArgs(raw string, cfg Config) Config {
	rest := strings.TrimSpace(raw)
	for rest != "" {
		orig, after := nextToken(rest)
		tok := strings.ToLower(orig)

		if k, v, ok := strings.Cut(orig, "="); ok {
			if normalizeKey(k) == OptionOutfit {
				if outfit := strings.TrimSpace(v + " " + after); outfit != "" {
					cfg.Outfit = outfit
				}
				return cfg
			}
			if err := cfg.Set(k, v); err == nil {
				rest = after
				continue
			}
		}

		if size, ok := matchSize(tok); ok {
			cfg.Size = size
			rest = after
			continue
		}
		if tok == "dark" || tok == "gelap" {
			next, afterNext := nextToken(after)
			if color, ok := matchColor("dark " + strings.ToLower(next)); ok {
				cfg.BackgroundColor = color
				rest = afterNext
				continue
			}
		}
		if color, ok := matchColor(tok); ok {
			cfg.BackgroundColor = color
			rest = after
			continue
		}
		if expr, ok := expressionAliases[tok]; ok {
			cfg.Expression = expr
			rest = after
			continue
		}
		if light, ok := matchLighting(tok); ok {
			cfg.Lighting = light
			rest = after
			continue
		}

		cfg.Outfit = rest
		break
	}
	return cfg
}

// nextToken splits off the first whitespace separated token of s and returns
// the remainder with leading space trimmed.
func nextToken(s string) (string, string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := strings.IndexFunc(s, unicode.IsSpace)
	if end < 0 {
		return s, ""
	}
	return s[:end], strings.TrimLeftFunc(s[end:], unicode.IsSpace)
}

var colorAliases = map[string]string{
	"merah":     "red",
	"biru":      "blue",
	"putih":     "white",
	"abu":       "gray",
	"abu-abu":   "gray",
	"grey":      "gray",
	"hitam":     "black",
	"dark grey": "dark gray",
	"dark abu":  "dark gray",
	"dark biru": "dark blue",
}

var expressionAliases = map[string]string{
	"original": ExpressionOriginal,
	"asli":     ExpressionOriginal,
	"neutral":  "a neutral expression",
	"netral":   "a neutral expression",
	"smile":    "a slight, closed-mouth smile",
	"senyum":   "a slight, closed-mouth smile",
}

func matchSize(tok string) (string, bool) {
	tok = strings.TrimSuffix(tok, "cm")
	for _, s := range sizes {
		if strings.TrimSuffix(s.Key, " cm") == tok {
			return s.Key, true
		}
	}
	return "", false
}

func matchColor(tok string) (string, bool) {
	if alias, ok := colorAliases[tok]; ok {
		tok = alias
	}
	for _, c := range backgroundColors {
		if c.Key == tok {
			return c.Key, true
		}
	}
	return "", false
}

func matchLighting(tok string) (string, bool) {
	if tok == "studio" {
		return lightings[0].Key, true
	}
	if tok == "natural" || tok == "alami" {
		return lightings[1].Key, true
	}
	for _, l := range lightings {
		if strings.HasPrefix(strings.ToLower(l.Key), tok+" ") || strings.HasPrefix(strings.ToLower(l.Key), tok+",") {
			return l.Key, true
		}
	}
	return "", false
}
