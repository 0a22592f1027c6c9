package npmrc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseToolVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in                  string
		major, minor, patch int
	}{
		{"10.2.4", 10, 2, 4},
		{" 8.19.4\n", 8, 19, 4},
		{"v9.1.0", 9, 1, 0},
		{"11.0.0-pre.1", 11, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			v, ok := ParseToolVersion(tt.in)
			require.True(t, ok)
			assert.Equal(t, tt.major, v.Major)
			assert.Equal(t, tt.minor, v.Minor)
			assert.Equal(t, tt.patch, v.Patch)
		})
	}
}

func TestParseToolVersion_Invalid(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"   ",
		"command not found",
		"npm ERR! enoent",
		"9",
		"v9",
		"9.1",
		"9.1.0+build.5",
		"npm WARN config global `--global` is deprecated\n9.8.1",
		"8.19.4\nnpm notice New major version of npm available! 8.19.4 -> 10.2.0",
	}
	for _, in := range inputs {
		_, ok := ParseToolVersion(in)
		assert.False(t, ok, in)
	}
}

func TestToolVersion_String(t *testing.T) {
	t.Parallel()

	v, ok := ParseToolVersion("10.2.4")
	require.True(t, ok)
	assert.Equal(t, "10.2.4", v.String())
	assert.Equal(t, "1.2.3", ToolVersion{Major: 1, Minor: 2, Patch: 3}.String())
}
