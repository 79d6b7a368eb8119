package utils_test

import (
	"testing"

	"github.com/jrsteele09/go-bookshelf-client/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestValue(t *testing.T) {
	require.Equal(t, 0, utils.Value[int](nil))
	require.Equal(t, "x", utils.Value(utils.Ptr("x")))
}

func TestCoalesce(t *testing.T) {
	require.Equal(t, 10, utils.Coalesce(0, 10, 20))
	require.Equal(t, "a", utils.Coalesce("a", "b"))
	require.Equal(t, "", utils.Coalesce[string]())
}
