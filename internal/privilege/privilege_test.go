// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package privilege

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeToRootIsIdempotent(t *testing.T) {
	tok := NewToken()
	require.NoError(t, tok.ChangeToRoot())
	require.NoError(t, tok.ChangeToRoot())
	require.NoError(t, tok.Reset())
}

func TestResetWithoutElevateIsNoop(t *testing.T) {
	tok := NewToken()
	assert.NoError(t, tok.Reset())
}

func TestSequentialScopesDoNotDeadlock(t *testing.T) {
	for i := 0; i < 3; i++ {
		tok := NewToken()
		require.NoError(t, tok.ChangeToRoot())
		require.NoError(t, tok.Reset())
	}
}
