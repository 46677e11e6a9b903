package testlog

import (
	"testing"

	"github.com/danmuck/phantompods/internal/logging"
)

func Start(t *testing.T) {
	t.Helper()
	logging.ConfigureTests()
	logger := logging.Default()
	logger.Info().Str("test", t.Name()).Msg("start")
}
