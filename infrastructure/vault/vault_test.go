package vault_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"social-calendar/infrastructure/vault"
)

const testKey = "6368616e676520746869732070617373776f726420746f206120736563726574"

func TestTokenVault_SealUnseal(t *testing.T) {
	v, err := vault.NewTokenVault(testKey)
	require.NoError(t, err)

	sealed, err := v.Seal("EAABfbToken123")
	require.NoError(t, err)
	assert.NotEqual(t, "EAABfbToken123", sealed)

	plain, err := v.Unseal(sealed)
	require.NoError(t, err)
	assert.Equal(t, "EAABfbToken123", plain)
}

func TestTokenVault_SealIsNonDeterministic(t *testing.T) {
	v, err := vault.NewTokenVault(testKey)
	require.NoError(t, err)

	a, err := v.Seal("same-token")
	require.NoError(t, err)
	b, err := v.Seal("same-token")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestTokenVault_UnsealTampered(t *testing.T) {
	v, err := vault.NewTokenVault(testKey)
	require.NoError(t, err)

	sealed, err := v.Seal("EAABfbToken123")
	require.NoError(t, err)

	tampered := strings.Replace(sealed, sealed[4:5], "A", 1)
	if tampered == sealed {
		tampered = strings.Replace(sealed, sealed[4:5], "B", 1)
	}
	_, err = v.Unseal(tampered)
	assert.ErrorIs(t, err, vault.ErrUnsealFailed)

	_, err = v.Unseal("not base64 at all!!!")
	assert.ErrorIs(t, err, vault.ErrUnsealFailed)
}

func TestNewTokenVault_BadKey(t *testing.T) {
	_, err := vault.NewTokenVault("deadbeef")
	assert.Error(t, err)

	_, err = vault.NewTokenVault("zz")
	assert.Error(t, err)
}
