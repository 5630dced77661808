package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEligible(t *testing.T) {
	c, err := New([]string{"/observations"})
	require.NoError(t, err)

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"listing path", "https://www.inaturalist.org/observations", true},
		{"trailing slash", "https://www.inaturalist.org/observations/", true},
		{"query string ignored", "https://www.inaturalist.org/observations?place_id=1&taxon_id=3", true},
		{"trailing slash with query", "https://www.inaturalist.org/observations/?view=map", true},
		{"path only", "/observations", true},
		{"user sub-path", "https://www.inaturalist.org/observations/someuser", false},
		{"numeric sub-path", "https://www.inaturalist.org/observations/123", false},
		{"sub-path with query", "https://www.inaturalist.org/observations/123?foo=bar", false},
		{"different page", "https://www.inaturalist.org/taxa/47126", false},
		{"root", "https://www.inaturalist.org/", false},
		{"prefix but longer segment", "https://www.inaturalist.org/observations2", false},
		{"unparseable", "://not-a-url", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Eligible(tt.url), "url %q", tt.url)
		})
	}
}

func TestEligibleMultiplePatterns(t *testing.T) {
	c, err := New([]string{"/observations", "/obs"})
	require.NoError(t, err)

	assert.True(t, c.Eligible("/obs"))
	assert.True(t, c.Eligible("/observations"))
	assert.False(t, c.Eligible("/obs/123"))
}

func TestNewRejectsBadInput(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err, "empty pattern list")

	_, err = New([]string{"/observations["})
	assert.Error(t, err, "invalid glob pattern")
}
