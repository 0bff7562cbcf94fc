package extraction

import (
	"fmt"
	"strings"

	"autoprice/internal/schema"
)

// termMappings are the common shorthand rewrites the generator is asked to apply.
var termMappings = [][2]string{
	{`"FWD" or "front wheel"`, "front_wheel_drive"},
	{`"AWD" or "all wheel"`, "all_wheel_drive"},
	{`"4WD" or "4x4"`, "four_wheel_drive"},
	{`"RWD" or "rear wheel"`, "rear_wheel_drive"},
	{`"automatic"`, "Automatic"},
	{`"manual"`, "6-Speed Manual"},
	{`"CVT"`, "Automatic CVT"},
	{`"Benz"`, "Mercedes-Benz"},
}

const binaryRules = `- accidents_or_damage: 1 if accidents or damage are mentioned, 0 if "no accidents" or "clean title"
- one_owner: 1 if "one owner" or "single owner" is mentioned, 0 otherwise
- personal_use_only: 1 if "personal use" or "daily driver" is mentioned, 0 if "fleet" or "rental"`

// workedExamples pair a description with the object the generator should return.
// Absent features are spelled out as null so the model learns the full shape.
var workedExamples = []struct {
	Input  string
	Output string
}{
	{
		Input: "2020 Toyota Camry, 45k miles, automatic, one owner, no accidents",
		Output: `{
  "manufacturer": "Toyota",
  "year": 2020,
  "mileage": 45000,
  "transmission": "Automatic",
  "one_owner": 1,
  "accidents_or_damage": 0,
  "drivetrain": null,
  "fuel_type": null,
  "interior_color": null,
  "mpg": null,
  "personal_use_only": null
}`,
	},
	{
		Input: "2018 Honda Civic manual, 60k miles, black interior, clean title, FWD",
		Output: `{
  "manufacturer": "Honda",
  "year": 2018,
  "mileage": 60000,
  "transmission": "6-Speed Manual",
  "drivetrain": "front_wheel_drive",
  "interior_color": "Black",
  "accidents_or_damage": 0,
  "one_owner": null,
  "fuel_type": null,
  "mpg": null,
  "personal_use_only": null
}`,
	},
	{
		Input: "Ford F-150 2021, 4x4, automatic, 30k miles",
		Output: `{
  "manufacturer": "Ford",
  "year": 2021,
  "mileage": 30000,
  "transmission": "10-Speed Automatic",
  "drivetrain": "four_wheel_drive",
  "accidents_or_damage": null,
  "one_owner": null,
  "fuel_type": null,
  "interior_color": null,
  "mpg": null,
  "personal_use_only": null
}`,
	},
}

// BuildPrompt renders the extraction instruction for a description. Categorical value
// lists and the year range are taken from the schema.
func BuildPrompt(s *schema.Schema, description string) string {
	var b strings.Builder

	b.WriteString("You are a car feature extraction assistant. Extract structured information from the user's car description.\n\n")
	b.WriteString("**IMPORTANT RULES:**\n")
	b.WriteString("1. Extract ONLY the features mentioned by the user\n")
	b.WriteString("2. Return ONLY valid JSON, no other text\n")
	b.WriteString("3. Use null for features not mentioned\n")
	b.WriteString("4. Map common terms to valid values (examples below)\n\n")

	b.WriteString("**Valid Values for Categorical Features:**\n\n")
	for _, f := range s.ByKind(schema.KindCategorical) {
		fmt.Fprintf(&b, "%s: %s\n", f.Name, strings.Join(f.Values, ", "))
	}

	b.WriteString("\n**Mapping Examples:**\n")
	for _, m := range termMappings {
		fmt.Fprintf(&b, "- %s → %q\n", m[0], m[1])
	}
	fmt.Fprintf(&b, "- Unknown values → %q\n\n", s.Fallback)

	b.WriteString("**Binary Features (0 or 1):**\n")
	b.WriteString(binaryRules)
	b.WriteString("\n\n")

	b.WriteString("**Numeric Features:**\n")
	if year, ok := s.Feature("year"); ok && year.Min != nil && year.Max != nil {
		fmt.Fprintf(&b, "- year: Extract 4-digit year (range: %d-%d)\n", int(*year.Min), int(*year.Max))
	}
	b.WriteString("- mileage: Extract number in miles (e.g., \"45k miles\" → 45000)\n")
	b.WriteString("- mpg: Extract if mentioned, otherwise null\n\n")

	for i, ex := range workedExamples {
		fmt.Fprintf(&b, "**Example %d:**\nInput: %q\nOutput:\n%s\n\n", i+1, ex.Input, ex.Output)
	}

	fmt.Fprintf(&b, "Now extract features from this description:\n\"%s\"\n\n", description)
	b.WriteString("Return ONLY the JSON object, no other text:")

	return b.String()
}
