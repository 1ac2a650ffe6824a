package photo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func scenarioConfig() Config {
	return Config{
		Size:            "3x4 cm",
		BackgroundColor: "blue",
		Outfit:          "Kemeja putih",
		Expression:      ExpressionOriginal,
		Lighting:        "professional studio lighting",
	}
}

func TestBuildPromptScenario(t *testing.T) {
	got := BuildPrompt(scenarioConfig(), Layout{})

	checks := []string{
		"Edit this passport photo.",
		"aspect ratio appropriate for a 3x4 cm print",
		"solid, uniform blue color",
		"Change the person's clothing to Kemeja putih.",
		ExpressionOriginalClause,
		"Adjust the lighting to be professional studio lighting",
		"head-and-shoulders portrait",
		"Photorealistic.",
	}
	for _, expect := range checks {
		require.Contains(t, got, expect)
	}
	require.NotContains(t, got, "**Logo:**")
	require.NotContains(t, got, "If it needs slight adjustment")
}

func TestBuildPromptExpression(t *testing.T) {
	for _, expr := range []string{"a neutral expression", "a slight, closed-mouth smile", "serious", "Original"} {
		cfg := scenarioConfig()
		cfg.Expression = expr

		got := BuildPrompt(cfg, Layout{})
		require.Contains(t, got, "make it "+expr+", but do not alter their identity")
		require.NotContains(t, got, ExpressionOriginalClause)
	}

	cfg := scenarioConfig()
	got := BuildPrompt(cfg, Layout{HasOutfitReference: true, HasLogo: true})
	require.Contains(t, got, ExpressionOriginalClause)
	require.NotContains(t, got, "If it needs slight adjustment")
}

func TestBuildPromptOutfitReference(t *testing.T) {
	got := BuildPrompt(scenarioConfig(), Layout{HasOutfitReference: true})

	require.True(t, strings.HasPrefix(got, "Edit the first image, which is the passport photo."))
	require.Contains(t, got, "match the outfit in the second image provided")
	require.Contains(t, got, "'Kemeja putih'")
	require.NotContains(t, got, "Change the person's clothing to Kemeja putih.")
}

func TestBuildPromptLogoOrdinal(t *testing.T) {
	tests := []struct {
		name    string
		layout  Layout
		ordinal string
	}{
		{name: "logo only", layout: Layout{HasLogo: true}, ordinal: "second"},
		{name: "outfit and logo", layout: Layout{HasOutfitReference: true, HasLogo: true}, ordinal: "third"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := BuildPrompt(scenarioConfig(), tc.layout)
			require.Contains(t, got, "Add the logo from the "+tc.ordinal+" image onto the left shirt pocket")
		})
	}
}

func TestBuildPromptClauseOrder(t *testing.T) {
	got := BuildPrompt(scenarioConfig(), Layout{HasLogo: true})

	order := []string{"**Crucially", "**Size:**", "**Background:**", "**Outfit:**", "**Logo:**", "**Expression:**", "**Lighting:**", "**Composition:**", "**Style:**"}
	last := -1
	for _, marker := range order {
		idx := strings.Index(got, marker)
		require.Greater(t, idx, last, "clause %s out of order", marker)
		last = idx
	}
}

func TestBuildPromptDeterministic(t *testing.T) {
	layout := Layout{HasOutfitReference: true, HasLogo: true}
	require.Equal(t, BuildPrompt(scenarioConfig(), layout), BuildPrompt(scenarioConfig(), layout))
}
