package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dishcool/github-go/internal/auth"
	"github.com/dishcool/github-go/internal/config"
)

func TestGenerateState_LengthAndAlphabet(t *testing.T) {
	state, err := auth.GenerateState(auth.StateLength)
	require.NoError(t, err)
	assert.Len(t, state, auth.StateLength)

	for _, r := range state {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		assert.True(t, isAlnum, "unexpected character %q in state token", r)
	}
}

func TestGenerateState_RaisesShortLengths(t *testing.T) {
	state, err := auth.GenerateState(1)
	require.NoError(t, err)
	assert.Len(t, state, config.MinStateLength)
}

func TestGenerateState_Unpredictable(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		state, err := auth.GenerateState(auth.StateLength)
		require.NoError(t, err)
		assert.False(t, seen[state], "state token repeated")
		seen[state] = true
	}
}
