package npm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/nodeops/internal/ports"
)

func TestSetProjectVersion(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		want     string
	}{
		{
			name:     "replaces in place",
			manifest: `{"name":"app","version":"1.0.0","scripts":{"build":"tsc"}}`,
			want: `{
  "name": "app",
  "version": "2.1.0",
  "scripts": {
    "build": "tsc"
  }
}
`,
		},
		{
			name:     "inserts after name",
			manifest: "{\n\t\"private\": true,\n\t\"name\": \"app\",\n\t\"main\": \"index.js\"\n}\n",
			want: `{
  "private": true,
  "name": "app",
  "version": "2.1.0",
  "main": "index.js"
}
`,
		},
		{
			name:     "inserts first without name",
			manifest: `{"main":"index.js"}`,
			want: `{
  "version": "2.1.0",
  "main": "index.js"
}
`,
		},
		{
			name:     "byte order mark",
			manifest: "\xef\xbb\xbf{\"version\":\"0.0.1\"}",
			want: `{
  "version": "2.1.0"
}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.files.AddFile("/work/app/package.json", tt.manifest)

			result, err := f.runner.SetProjectVersion(context.Background(), "app", " 2.1.0 ")
			require.NoError(t, err)
			assert.True(t, result.Success)

			content, ok := f.files.Content("/work/app/package.json")
			require.True(t, ok)
			assert.Equal(t, tt.want, content)
			assert.Equal(t, []string{"Setting package version to 2.1.0"}, f.logger.Messages(ports.LevelInfo))
		})
	}
}

func TestSetProjectVersion_Failures(t *testing.T) {
	tests := []struct {
		name     string
		version  string
		manifest *string
		wantMsg  string
	}{
		{"version required", "", ptr(`{}`), "Version is required."},
		{"missing manifest", "1.0.0", nil, "package.json not found"},
		{"invalid json", "1.0.0", ptr(`{"name":`), "package.json could not be deserialized."},
		{"array", "1.0.0", ptr(`["a"]`), "package.json could not be deserialized."},
		{"null", "1.0.0", ptr(`null`), "package.json could not be deserialized."},
		{"trailing data", "1.0.0", ptr(`{} {}`), "package.json could not be deserialized."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.manifest != nil {
				f.files.AddFile("/work/package.json", *tt.manifest)
			}

			result, err := f.runner.SetProjectVersion(context.Background(), "", tt.version)
			require.NoError(t, err)
			assert.False(t, result.Success)
			assert.Equal(t, []string{tt.wantMsg}, f.logger.Messages(ports.LevelError))

			if tt.manifest != nil {
				content, _ := f.files.Content("/work/package.json")
				assert.Equal(t, *tt.manifest, content)
			}
		})
	}
}

func TestSetProjectVersion_WriteError(t *testing.T) {
	f := newFixture(t)
	f.files.AddFile("/work/package.json", `{"name":"app"}`)
	f.files.FailOn("/work/package.json", errors.New("read-only file system"))

	_, err := f.runner.SetProjectVersion(context.Background(), "", "1.0.0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read-only file system")
}

func ptr(s string) *string {
	return &s
}
