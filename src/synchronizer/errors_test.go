package synchronizer

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorMatchesByCode(t *testing.T) {
	err := newError(CodeSyncFailed, "operation %s doesn't exist", "s1")
	require.ErrorIs(t, err, ErrSyncFailed)
	require.NotErrorIs(t, err, ErrSyncInProgress)
	require.Equal(t, "SYNC_FAILED: operation s1 doesn't exist", err.Error())

	wrapped := fmt.Errorf("execute: %w", err)
	require.ErrorIs(t, wrapped, ErrSyncFailed)
	require.Equal(t, CodeSyncFailed, CodeOf(wrapped))
}

func TestErrorWrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := ErrSyncFailed.Wrap(cause)

	require.ErrorIs(t, err, cause)
	require.ErrorIs(t, err, ErrSyncFailed)
	require.Nil(t, ErrSyncFailed.Err)
}

func TestCodeOfInfrastructureError(t *testing.T) {
	require.Equal(t, Code(""), CodeOf(errors.New("disk full")))
	require.Equal(t, Code(""), CodeOf(nil))
}
