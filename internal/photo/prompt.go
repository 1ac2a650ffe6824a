package photo

import (
	"fmt"
	"strings"
)

// Layout describes which optional images accompany the main photo.
type Layout struct {
	HasOutfitReference bool
	HasLogo            bool
}

// ImageCount is the number of images sent with the instruction.
func (l Layout) ImageCount() int {
	n := 1
	if l.HasOutfitReference {
		n++
	}
	if l.HasLogo {
		n++
	}
	return n
}

// LogoOrdinal names the logo's position among the attached images.
func (l Layout) LogoOrdinal() string {
	if l.HasOutfitReference {
		return "third"
	}
	return "second"
}

const (
	introSingle   = "Edit this passport photo."
	introMultiple = "Edit the first image, which is the passport photo."

	identityClause = "- **Crucially, do not change the person's face, facial features, or identity. Only modify the background, their clothing, and the lighting as specified below.**"

	// ExpressionOriginalClause is emitted verbatim when the expression is ExpressionOriginal.
	ExpressionOriginalClause = "- **Expression:** Maintain the person's original expression. Do not alter their expression."

	compositionClause = "- **Composition:** Ensure it remains a head-and-shoulders portrait. The head should be centered, and the top of the shoulders visible."
	styleClause       = "- **Style:** Photorealistic. The result must look like a real photograph, not an illustration or painting. Ensure the final image is of very high quality."

	outfitSuffix = "The new outfit should look natural and professional, suitable for a passport photo."
)

// BuildPrompt composes the edit instruction. Output depends only on cfg and
// layout.
func BuildPrompt(cfg Config, layout Layout) string {
	lines := make([]string, 0, 10)

	if layout.HasOutfitReference {
		lines = append(lines, introMultiple)
	} else {
		lines = append(lines, introSingle)
	}

	lines = append(lines,
		identityClause,
		fmt.Sprintf("- **Size:** The final photo should have an aspect ratio appropriate for a %s print.", cfg.Size),
		fmt.Sprintf("- **Background:** Change the background to a solid, uniform %s color. Remove any existing background elements, shadows, or textures.", cfg.BackgroundColor),
		"- **Outfit:** "+outfitClause(cfg.Outfit, layout.HasOutfitReference),
	)

	if layout.HasLogo {
		lines = append(lines, fmt.Sprintf("- **Logo:** Add the logo from the %s image onto the left shirt pocket of the new outfit. The logo should be small, clear, and positioned naturally on the pocket.", layout.LogoOrdinal()))
	}

	lines = append(lines,
		expressionClause(cfg.Expression),
		fmt.Sprintf("- **Lighting:** Adjust the lighting to be %s, ensuring the face is evenly illuminated with no harsh shadows.", cfg.Lighting),
		compositionClause,
		styleClause,
	)

	return strings.Join(lines, "\n")
}

func outfitClause(outfit string, hasReference bool) string {
	if hasReference {
		return fmt.Sprintf("Change the person's clothing to match the outfit in the second image provided. Also consider this description for context or specific details: '%s'. %s", outfit, outfitSuffix)
	}
	return fmt.Sprintf("Change the person's clothing to %s. %s", outfit, outfitSuffix)
}

func expressionClause(expression string) string {
	if expression == ExpressionOriginal {
		return ExpressionOriginalClause
	}
	return fmt.Sprintf("- **Expression:** Maintain the person's original expression. If it needs slight adjustment for official use, make it %s, but do not alter their identity.", expression)
}
