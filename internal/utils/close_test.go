package utils

import (
	"errors"
	"testing"

	"github.com/MrSnakeDoc/pathways/internal/logger"
)

type closer struct {
	calls int
	err   error
}

func (c *closer) Close() error {
	c.calls++
	return c.err
}

func TestClose(t *testing.T) {
	c := &closer{err: errors.New("boom")}
	Close(c)
	CloseLogged(c, logger.NewNop(), "test")
	if c.calls != 2 {
		t.Errorf("Close called %d times, want 2", c.calls)
	}
}
