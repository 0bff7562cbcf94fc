package narrative

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"autoprice/internal/port"
)

const noWarnings = "None - all information was provided"

// Generator writes the friendly summary that accompanies an estimate.
type Generator struct {
	generator port.TextGenerator
	logger    *zap.Logger
}

// NewGenerator creates a narrative generator.
func NewGenerator(generator port.TextGenerator, logger *zap.Logger) *Generator {
	return &Generator{generator: generator, logger: logger}
}

// Narrate makes a single generator call. It never fails: on any error or empty
// reply it returns the templated fallback instead.
func (g *Generator) Narrate(ctx context.Context, description string, priceMin, priceMax float64, warnings []string) string {
	gen, err := g.generator.Generate(ctx, BuildPrompt(description, warnings))
	if err != nil {
		g.logger.Error("failed to generate narrative", zap.Error(err))
		return Fallback(priceMin, priceMax, warnings)
	}

	text := strings.TrimSpace(gen.Text)
	if text == "" {
		g.logger.Warn("generator returned an empty narrative", zap.String("provider", gen.Provider))
		return Fallback(priceMin, priceMax, warnings)
	}
	return text
}

// Fallback is the plain summary used when the generator is unavailable.
func Fallback(priceMin, priceMax float64, warnings []string) string {
	text := fmt.Sprintf("Based on your description, the estimated price range is $%s to $%s.",
		dollars(priceMin), dollars(priceMax))
	if len(warnings) > 0 {
		text += "\n\nNote: " + warnings[0]
	}
	return text
}

func dollars(v float64) string {
	return humanize.Comma(int64(math.Round(v)))
}

// BuildPrompt renders the narrative instruction. Prices are deliberately left
// out; they are shown to the user separately.
func BuildPrompt(description string, warnings []string) string {
	considerations := noWarnings
	if len(warnings) > 0 {
		lines := make([]string, len(warnings))
		for i, w := range warnings {
			lines[i] = "- " + w
		}
		considerations = strings.Join(lines, "\n")
	}

	var b strings.Builder
	b.WriteString("You are a friendly car pricing assistant. Based on the user's car description and our price analysis, write a natural, helpful summary.\n\n")
	fmt.Fprintf(&b, "**User's Description:**\n\"%s\"\n\n", description)
	fmt.Fprintf(&b, "**Considerations:**\n%s\n\n", considerations)
	b.WriteString("**Instructions:**\nWrite a concise 2 paragraph response with this structure:\n\n")
	b.WriteString("**Paragraph 1:** Start with a simple greeting (like \"Hello\" or \"Hi there\"), then mention that using the information provided and a machine learning model, we estimated the value. DO NOT repeat the actual price numbers - they are shown separately. Just mention that the estimate was made.\n\n")
	b.WriteString("**Paragraph 2:** If there are considerations/warnings, explain them in user-friendly, natural language. If no considerations exist (all info was provided), just add a brief positive note about having complete information for an accurate estimate. Explain the assumptions made (e.g., mileage, condition) when they apply.\n\n")
	b.WriteString("Keep it warm but concise. Don't repeat back all the features the user already told you. Write directly to the user (\"your car\", \"based on your description\").\n\n")
	b.WriteString("Generate the response:")
	return b.String()
}
