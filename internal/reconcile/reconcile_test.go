package reconcile_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autoprice/internal/features"
	"autoprice/internal/reconcile"
	"autoprice/internal/schema"
)

func loadSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.Load()
	require.NoError(t, err)
	return s
}

func TestParse_Accepted(t *testing.T) {
	s := loadSchema(t)
	p := reconcile.NewParser(s, false)

	tests := []struct {
		name string
		raw  string
		want features.Partial
	}{
		{
			name: "bare object",
			raw:  `{"year": 2020, "manufacturer": "Toyota"}`,
			want: features.Partial{"year": 2020.0, "manufacturer": "Toyota"},
		},
		{
			name: "fenced with language tag",
			raw:  "```json\n{\"year\": 2018, \"mpg\": null}\n```",
			want: features.Partial{"year": 2018.0, "mpg": nil},
		},
		{
			name: "fence without closing line",
			raw:  "```\n{\"one_owner\": 1}",
			want: features.Partial{"one_owner": 1.0},
		},
		{
			name: "surrounding prose",
			raw:  "Sure! Here you go: {\"mileage\": 45000} Hope that helps.",
			want: features.Partial{"mileage": 45000.0},
		},
		{
			name: "unknown keys dropped",
			raw:  `{"year": 2019, "color": "red", "vin": "X"}`,
			want: features.Partial{"year": 2019.0},
		},
		{
			name: "empty object",
			raw:  `{}`,
			want: features.Partial{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Parse(tt.raw)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_Rejected(t *testing.T) {
	s := loadSchema(t)
	p := reconcile.NewParser(s, false)

	tests := []struct {
		name     string
		raw      string
		noObject bool
	}{
		{"no braces", "I could not find any features.", true},
		{"empty", "", true},
		{"reversed braces", "} nothing {", true},
		{"malformed", `{"year": 2020, "manufacturer": }`, false},
		{"trailing comma", `{"year": 2020,}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Parse(tt.raw)
			require.Error(t, err)

			var parseErr *reconcile.ParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Equal(t, tt.raw, parseErr.Raw)
			assert.Equal(t, tt.noObject, errors.Is(err, reconcile.ErrNoJSONObject))
		})
	}
}

func TestParse_LenientRepairs(t *testing.T) {
	s := loadSchema(t)

	strict := reconcile.NewParser(s, false)
	lenient := reconcile.NewParser(s, true)
	raw := `{"year": 2020, "manufacturer": "Honda",}`

	_, err := strict.Parse(raw)
	require.Error(t, err)

	got, err := lenient.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, 2020.0, got["year"])
	assert.Equal(t, "Honda", got["manufacturer"])
}

func TestBackfill_EmptyPartial(t *testing.T) {
	s := loadSchema(t)

	rec, err := reconcile.Backfill(s, features.Partial{})
	require.NoError(t, err)

	want := map[string]any{
		"accidents_or_damage": 0,
		"one_owner":           0,
		"personal_use_only":   0,
		"manufacturer":        "others",
		"transmission":        "others",
		"drivetrain":          "others",
		"fuel_type":           "Gasoline",
		"interior_color":      "others",
		"year":                2020,
		"mileage":             50000,
		"mpg":                 27.5,
		"driver_reviews_num":  64,
		"seller_rating":       4.5,
		"driver_rating":       4.7,
	}
	if diff := cmp.Diff(want, rec.Map()); diff != "" {
		t.Errorf("Backfill mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, s.Names(), rec.Names())
}

func TestBackfill_AutoFilledAlwaysOverwritten(t *testing.T) {
	s := loadSchema(t)

	rec, err := reconcile.Backfill(s, features.Partial{
		"seller_rating":      3.1,
		"driver_rating":      2.0,
		"driver_reviews_num": 900.0,
	})
	require.NoError(t, err)

	v, _ := rec.Get("seller_rating")
	assert.Equal(t, 4.5, v)
	v, _ = rec.Get("driver_rating")
	assert.Equal(t, 4.7, v)
	v, _ = rec.Get("driver_reviews_num")
	assert.Equal(t, 64, v)
}

func TestBackfill_PresentValuesPassThrough(t *testing.T) {
	s := loadSchema(t)

	rec, err := reconcile.Backfill(s, features.Partial{
		"year":         2030.0,
		"mileage":      45000.0,
		"one_owner":    1.0,
		"manufacturer": "Toyota",
		"drivetrain":   "hovercraft",
		"mpg":          31.0,
	})
	require.NoError(t, err)

	m := rec.Map()
	assert.Equal(t, 2030.0, m["year"])
	assert.Equal(t, 45000.0, m["mileage"])
	assert.Equal(t, 1.0, m["one_owner"])
	assert.Equal(t, "Toyota", m["manufacturer"])
	assert.Equal(t, "others", m["drivetrain"])
	assert.Equal(t, 31.0, m["mpg"])
}

func TestBackfill_MPGUsesResolvedFuelAndYear(t *testing.T) {
	s := loadSchema(t)

	tests := []struct {
		name    string
		partial features.Partial
		want    float64
	}{
		{"hybrid newer", features.Partial{"fuel_type": "Hybrid", "year": 2021.0}, 49.5},
		{"diesel older", features.Partial{"fuel_type": "Diesel", "year": 2012.0}, 27.0},
		{"unknown fuel resolves to others", features.Partial{"fuel_type": "Hydrogen", "year": 2018.0}, 25.0},
		{"null mpg is estimated", features.Partial{"year": 2018.0, "mpg": nil}, 25.0},
		{"numeric string year", features.Partial{"year": "2014"}, 22.5},
		{"non-numeric year uses default", features.Partial{"year": "recent"}, 27.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := reconcile.Backfill(s, tt.partial)
			require.NoError(t, err)
			v, _ := rec.Get("mpg")
			assert.InDelta(t, tt.want, v, 1e-9)
		})
	}
}

func TestBackfill_NonNumericYearKeptForValidation(t *testing.T) {
	s := loadSchema(t)

	rec, err := reconcile.Backfill(s, features.Partial{"year": "recent"})
	require.NoError(t, err)

	v, _ := rec.Get("year")
	assert.Equal(t, "recent", v)
}

func TestBackfill_Idempotent(t *testing.T) {
	s := loadSchema(t)

	first, err := reconcile.Backfill(s, features.Partial{
		"manufacturer": "Subaru",
		"year":         2018.0,
		"fuel_type":    "Hybrid",
		"one_owner":    1.0,
	})
	require.NoError(t, err)

	again := features.Partial(first.Map())
	again["driver_rating"] = 1.0

	second, err := reconcile.Backfill(s, again)
	require.NoError(t, err)
	if diff := cmp.Diff(first.Map(), second.Map()); diff != "" {
		t.Errorf("second backfill changed the record (-first +second):\n%s", diff)
	}
}
