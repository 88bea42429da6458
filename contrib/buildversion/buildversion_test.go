package buildversion

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetVersionUnknownModule(t *testing.T) {
	require.Equal(t, "", GetVersion("example.com/not/a/dependency"))
}
