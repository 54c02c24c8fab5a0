package utils

import (
	"io"

	"github.com/MrSnakeDoc/pathways/internal/logger"
)

// Close closes c and ignores any error.
// Use for cleanup on an error path that already returns a better error.
func Close(c io.Closer) {
	_ = c.Close()
}

// CloseLogged closes c and logs any error at warn level.
func CloseLogged(c io.Closer, log logger.Logger, what string) {
	if err := c.Close(); err != nil {
		log.Warn("failed to close", logger.String("resource", what), logger.Error(err))
	}
}
