package testutil

import (
	"io"

	"github.com/dtroode/gophfriends-server/internal/logger"
)

func MakeNoopLogger() *logger.Logger {
	return logger.NewWithWriter(io.Discard, 0, false)
}
