package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTargetAt(t *testing.T) {
	want := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

	inputs := []string{
		"2024-05-01 09:30:00",
		"2024-05-01T09:30:00",
		"2024-05-01T09:30",
		"2024-05-01T09:30:00Z",
		"2024-05-01T18:30:00+09:00",
		"2024-05-01T09:30:00.750Z",
		"  2024-05-01 09:30:00 ",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			got, err := ParseTargetAt(in)
			require.NoError(t, err)
			assert.True(t, want.Equal(got), "got %s", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParseTargetAt_Invalid(t *testing.T) {
	for _, in := range []string{"", "tomorrow", "2024-13-01 00:00:00", "01/05/2024"} {
		_, err := ParseTargetAt(in)
		assert.Error(t, err, in)
	}
}
