package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorReturnsBareMessage(t *testing.T) {
	err := Errorf(EUNAUTHENTICATED, "You are not authorized to access this resource. Please authenticate.")

	// The executor formats resolver errors with Error(), so it must carry
	// exactly the client-facing message and nothing else.
	require.Equal(t, "You are not authorized to access this resource. Please authenticate.", err.Error())
	require.Equal(t, map[string]interface{}{"code": EUNAUTHENTICATED}, err.Extensions())
}

func TestErrorCodeAndMessage(t *testing.T) {
	err := Errorf(ENOTFOUND, "Post does not exist")
	require.Equal(t, ENOTFOUND, ErrorCode(err))
	require.Equal(t, "Post does not exist", ErrorMessage(err))

	wrapped := fmt.Errorf("resolving post: %w", err)
	require.Equal(t, ENOTFOUND, ErrorCode(wrapped))
	require.Equal(t, "Post does not exist", ErrorMessage(wrapped))

	// Non-application errors are classified internal and masked.
	plain := errors.New("pq: connection refused")
	require.Equal(t, EINTERNAL, ErrorCode(plain))
	require.Equal(t, "Internal error.", ErrorMessage(plain))

	require.Equal(t, "", ErrorCode(nil))
	require.Equal(t, "", ErrorMessage(nil))
}
