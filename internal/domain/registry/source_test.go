package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSourceID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		wantURL string
		name    string
	}{
		{"https://registry.example.com/npm/", "https://registry.example.com/npm/", ""},
		{"http://localhost:4873", "http://localhost:4873", ""},
		{"url::https://proget.local/npm/feed/", "https://proget.local/npm/feed/", ""},
		{"  internal-npm ", "", "internal-npm"},
		{"ftp://example.com/npm", "", "ftp://example.com/npm"},
		{"https:/missing-host", "", "https:/missing-host"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			id := ParseSourceID(tt.in)
			assert.Equal(t, tt.wantURL != "", id.IsURL())
			assert.Equal(t, tt.wantURL, id.URL())
			assert.Equal(t, tt.name, id.Name())
			assert.False(t, id.IsZero())
		})
	}
}

func TestParseSourceID_Empty(t *testing.T) {
	t.Parallel()

	id := ParseSourceID("   ")
	assert.True(t, id.IsZero())
	assert.False(t, id.IsURL())
}

func TestSource_HasCredentials(t *testing.T) {
	t.Parallel()

	assert.False(t, Source{RegistryURL: "https://r"}.HasCredentials())
	assert.False(t, Source{UserName: "  "}.HasCredentials())
	assert.True(t, Source{UserName: "alice"}.HasCredentials())
	assert.True(t, Source{Password: "secret"}.HasCredentials())
	assert.True(t, Source{APIKey: "key"}.HasCredentials())
}
