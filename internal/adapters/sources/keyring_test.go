package sources

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()
	store := NewKeyringStore()
	ctx := context.Background()

	_, err := store.Secret(ctx, "internal")
	assert.ErrorIs(t, err, ErrSecretNotFound)

	require.NoError(t, store.Store("internal", "s3cret"))
	got, err := store.Secret(ctx, "internal")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", got)

	require.NoError(t, store.Delete("internal"))
	_, err = store.Secret(ctx, "internal")
	assert.ErrorIs(t, err, ErrSecretNotFound)

	assert.ErrorIs(t, store.Delete("internal"), ErrSecretNotFound)
}
