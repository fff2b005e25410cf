package repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTime(t *testing.T) {
	for _, tc := range []struct {
		in      string
		want    time.Time
		null    bool
		coerced bool
	}{
		{in: "2024-01-15", want: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{in: "2024-01-15 10:23:45", want: time.Date(2024, 1, 15, 10, 23, 45, 0, time.UTC)},
		{in: "2024-01-15 10:23:45.500", want: time.Date(2024, 1, 15, 10, 23, 45, 500000000, time.UTC)},
		{in: "2024-01-15T10:23:45Z", want: time.Date(2024, 1, 15, 10, 23, 45, 0, time.UTC)},
		{in: " 2024-02-01T00:00:00 ", want: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		{in: "", null: true},
		{in: "NaT", null: true},
		{in: "nan", null: true},
		{in: "not a date", null: true, coerced: true},
		{in: "2024-13-45", null: true, coerced: true},
	} {
		t.Run(tc.in, func(t *testing.T) {
			got, coerced := ParseTime(tc.in)
			assert.Equal(t, tc.coerced, coerced)
			if tc.null {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tc.want.Equal(*got), "got %s", got)
		})
	}
}

func TestParseTimeKeepsOffset(t *testing.T) {
	got, _ := ParseTime("2024-03-31 23:30:00+02:00")
	require.NotNil(t, got)
	assert.Equal(t, time.March, got.Month())
	assert.Equal(t, 31, got.Day())
}

func TestParseAmount(t *testing.T) {
	v, coerced := ParseAmount("1500.50")
	require.NotNil(t, v)
	assert.False(t, coerced)
	assert.Equal(t, 1500.5, *v)

	v, coerced = ParseAmount("0")
	require.NotNil(t, v, "zero is a valid amount")
	assert.False(t, coerced)

	v, coerced = ParseAmount("")
	assert.Nil(t, v)
	assert.False(t, coerced)

	v, coerced = ParseAmount("abc")
	assert.Nil(t, v)
	assert.True(t, coerced)

	v, _ = ParseAmount("NaN")
	assert.Nil(t, v)
}

func TestParseBool(t *testing.T) {
	for in, want := range map[string]bool{
		"True": true, "true": true, "1": true, "1.0": true,
		"False": false, "0": false, "": false,
	} {
		got, coerced := ParseBool(in)
		assert.Equal(t, want, got, in)
		assert.False(t, coerced, in)
	}
	got, coerced := ParseBool("maybe")
	assert.False(t, got)
	assert.True(t, coerced)
}

func TestNormalizeID(t *testing.T) {
	assert.Equal(t, "42", NormalizeID("42.0"))
	assert.Equal(t, "42", NormalizeID(" 42 "))
	assert.Equal(t, "a.0", NormalizeID("a.0"))
	assert.Equal(t, "", NormalizeID("NaN"))
	assert.Equal(t, "", NormalizeText("null"))
	assert.Equal(t, "SaaS", NormalizeText(" SaaS "))
}
