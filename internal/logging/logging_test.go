package logging_test

import (
	"testing"

	"github.com/jrsteele09/go-bookshelf-client/internal/logging"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())

	logging.Setup("debug", "PROD")
	require.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	logging.Setup("nonsense", "DEV")
	require.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	logging.Setup("", "DEV")
	require.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
