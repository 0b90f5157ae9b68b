package auth_test

import (
	"testing"

	"github.com/medipoint/medipointbackend/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := auth.HashPassword("hunter2hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2hunter2", hash)

	assert.NoError(t, auth.CheckPassword(hash, "hunter2hunter2"))
	assert.Error(t, auth.CheckPassword(hash, "wrong-password"))
}

func TestNewResetCodeIsOpaqueAndUnique(t *testing.T) {
	a := auth.NewResetCode()
	b := auth.NewResetCode()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
