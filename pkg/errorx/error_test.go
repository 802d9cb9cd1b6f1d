package errorx

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(InvalidState, "Pet %s is on a quest", "PET_1")
	require.Equal(t, Error{Code: InvalidState, Message: "Pet PET_1 is on a quest"}, err)
	require.Equal(t, "Pet PET_1 is on a quest", err.Error())
}

func TestIs(t *testing.T) {
	wrapped := fmt.Errorf("execute: %w", New(AlreadyClaimed, "Already claimed"))
	require.True(t, Is(wrapped, AlreadyClaimed))
	require.False(t, Is(wrapped, InvalidState))
	require.False(t, Is(fmt.Errorf("plain"), AlreadyClaimed))
}
