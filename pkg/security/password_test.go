package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasherRoundTrip(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("espresso-machine")
	require.NoError(t, err)
	assert.NotEqual(t, "espresso-machine", hash)

	assert.NoError(t, h.Compare(hash, "espresso-machine"))
	assert.Error(t, h.Compare(hash, "espresso-machinE"))
}

func TestBcryptHasherRejectsShortPassword(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	_, err := h.Hash("latte")
	require.Error(t, err)
}

func TestBcryptHasherClampsCost(t *testing.T) {
	h := NewBcryptHasher(0)

	hash, err := h.Hash("espresso-machine")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}
