package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestString(t *testing.T) {
	s := String()
	require.Contains(t, s, "keywire")
	require.Contains(t, s, Version)
	require.Contains(t, s, "go=")
}
