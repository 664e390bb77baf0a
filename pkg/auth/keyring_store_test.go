package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()

	store, err := NewKeyringStore()
	require.NoError(t, err)

	_, err = store.Retrieve()
	assert.ErrorIs(t, err, ErrTokenNotFound)

	require.NoError(t, store.Store(&Token{Value: "keyring-token"}))
	token, err := store.Retrieve()
	require.NoError(t, err)
	assert.Equal(t, "keyring-token", token.Value)

	require.NoError(t, store.Delete())
	assert.ErrorIs(t, store.Delete(), ErrTokenNotFound)
	assert.ErrorIs(t, store.Store(nil), ErrInvalidToken)
}
