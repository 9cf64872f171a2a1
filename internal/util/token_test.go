package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propline/bidboard/dao/model"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := newTokenManager("test-secret", 1, 24)

	msg := JWTMessage{UserID: 42, Username: "vendor-1", Role: model.RoleVendor}
	access, refresh, err := tm.CreateTokens(&msg)
	require.NoError(t, err)
	assert.NotEqual(t, access, refresh)

	got, err := tm.CheckToken(access)
	require.NoError(t, err)
	assert.Equal(t, msg, got)

	got, err = tm.CheckToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestCheckTokenRejectsWrongSecret(t *testing.T) {
	tm := newTokenManager("secret-a", 1, 24)
	other := newTokenManager("secret-b", 1, 24)

	access, _, err := tm.CreateTokens(&JWTMessage{UserID: 1, Username: "x", Role: model.RoleManager})
	require.NoError(t, err)

	_, err = other.CheckToken(access)
	assert.Error(t, err)
}

func TestCheckTokenRejectsExpired(t *testing.T) {
	tm := newTokenManager("secret", -1, -1)

	access, _, err := tm.CreateTokens(&JWTMessage{UserID: 1, Username: "x", Role: model.RoleManager})
	require.NoError(t, err)

	_, err = tm.CheckToken(access)
	assert.Error(t, err)
}
