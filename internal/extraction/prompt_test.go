package extraction_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autoprice/internal/extraction"
	"autoprice/internal/schema"
)

func TestBuildPrompt(t *testing.T) {
	s, err := schema.Load()
	require.NoError(t, err)

	prompt := extraction.BuildPrompt(s, "2019 BMW X5, AWD, 40k miles")

	assert.True(t, strings.HasPrefix(prompt, "You are a car feature extraction assistant."))
	assert.True(t, strings.HasSuffix(prompt, "Return ONLY the JSON object, no other text:"))
	assert.Contains(t, prompt, "\"2019 BMW X5, AWD, 40k miles\"")

	for _, f := range s.ByKind(schema.KindCategorical) {
		assert.Contains(t, prompt, f.Name+": "+strings.Join(f.Values, ", "))
	}

	assert.Contains(t, prompt, "range: 2010-2024")
	assert.Contains(t, prompt, `"4WD" or "4x4" → "four_wheel_drive"`)
	assert.Contains(t, prompt, `"Benz" → "Mercedes-Benz"`)
	assert.Contains(t, prompt, `Unknown values → "others"`)
	assert.Contains(t, prompt, "**Example 3:**")
	assert.Contains(t, prompt, `"personal_use_only": null`)
}
