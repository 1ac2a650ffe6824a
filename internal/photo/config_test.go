package photo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigSet(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Set("size", "anything at all"))
	require.NoError(t, cfg.Set("backgroundColor", "mint green"))
	require.NoError(t, cfg.Set("Outfit", "Batik lengan panjang"))
	require.NoError(t, cfg.Set("expression", ""))
	require.NoError(t, cfg.Set("lighting", "candle light"))

	require.Equal(t, Config{
		Size:            "anything at all",
		BackgroundColor: "mint green",
		Outfit:          "Batik lengan panjang",
		Expression:      "",
		Lighting:        "candle light",
	}, cfg)

	require.ErrorIs(t, cfg.Set("hat", "fedora"), ErrUnknownOption)

	v, err := cfg.Get("background_color")
	require.NoError(t, err)
	require.Equal(t, "mint green", v)
}

func TestDefaultConfigUsesPresets(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, "3x4 cm", cfg.Size)
	require.Equal(t, "Blue", Label(OptionBackgroundColor, cfg.BackgroundColor))
	require.Equal(t, "Asli (dari foto awal)", Label(OptionExpression, cfg.Expression))
	require.Equal(t, "Studio Standar", Label(OptionLighting, cfg.Lighting))
	require.Equal(t, "custom", Label(OptionOutfit, "custom"))
}

func TestParseArgs(t *testing.T) {
	got := ParseArgs("4x6 merah smile rembrandt Kemeja batik", DefaultConfig())
	require.Equal(t, "4x6 cm", got.Size)
	require.Equal(t, "red", got.BackgroundColor)
	require.Equal(t, "a slight, closed-mouth smile", got.Expression)
	require.Contains(t, got.Lighting, "Rembrandt lighting")
	require.Equal(t, "Kemeja batik", got.Outfit)

	got = ParseArgs("dark blue outfit=Jas hitam dan dasi", DefaultConfig())
	require.Equal(t, "dark blue", got.BackgroundColor)
	require.Equal(t, "Jas hitam dan dasi", got.Outfit)

	got = ParseArgs("", DefaultConfig())
	require.Equal(t, DefaultConfig(), got)
}

func TestParseArgsKeepsOutfitVerbatim(t *testing.T) {
	def := DefaultConfig()

	got := ParseArgs(def.Outfit, def)
	require.Equal(t, def, got)

	got = ParseArgs("3x4  biru   Batik merah,  lengan panjang", def)
	require.Equal(t, "3x4 cm", got.Size)
	require.Equal(t, "blue", got.BackgroundColor)
	require.Equal(t, "Batik merah,  lengan panjang", got.Outfit)

	got = ParseArgs("gelap biru outfit=  Jas hitam  smile", def)
	require.Equal(t, "dark blue", got.BackgroundColor)
	require.Equal(t, def.Expression, got.Expression)
	require.Equal(t, "Jas hitam  smile", got.Outfit)
}
