package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsDateLike(t *testing.T) {
	assert.True(t, IsDateLike("2024-03-15T00:00:00"))
	assert.True(t, IsDateLike("T-shirt"))
	assert.False(t, IsDateLike("2024-03-15"))
	assert.False(t, IsDateLike("not a date"))
}

func TestNormalizeCellDate(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)

	cases := []struct {
		input    string
		want     string
		dateLike bool
	}{
		{"2024-03-15T00:00:00", "3/15/24", true},
		{"2024-03-15T14:30:00", "3/15 2:30pm", true},
		{"2024-03-15T09:05:00.250", "3/15 9:05am", true},
		{"2024-12-01T00:00", "12/1/24", true},
		{"2024-12-01T18:45", "12/1 6:45pm", true},
		{"2024-03-15T14:30:00Z", "2024-03-15T14:30:00Z", false},
		{"T-shirt", "T-shirt", false},
		{"not a date", "not a date", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, ok := NormalizeCellDate(c.input, chicago)
		assert.Equal(t, c.want, got, "NormalizeCellDate(%q)", c.input)
		assert.Equal(t, c.dateLike, ok, "NormalizeCellDate(%q) ok", c.input)
	}
}

func TestFormatCreated(t *testing.T) {
	assert.Equal(t, "3/15/24 2:30pm", FormatCreated("2024-03-15T14:30:00Z", time.UTC))
	assert.Equal(t, "3/15/24 9:30am", FormatCreated("2024-03-15T14:30:00Z", time.FixedZone("EST", -5*3600)))
	assert.Equal(t, "3/15/24 8:00am", FormatCreated("2024-03-15T08:00:00", time.UTC))
	assert.Equal(t, "yesterday", FormatCreated("yesterday", time.UTC))
	assert.Equal(t, "", FormatCreated("", time.UTC))
}
