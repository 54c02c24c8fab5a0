package scheduler

import (
	"sync"
	"time"

	"github.com/MrSnakeDoc/pathways/internal/logger"
)

// Notice is a user-visible message raised by a background job.
type Notice struct {
	Time    time.Time `json:"time"`
	Level   string    `json:"level"`
	Source  string    `json:"source"`
	Message string    `json:"message"`
}

// Notifier surfaces background failures to the user.
type Notifier interface {
	Notify(n Notice)
}

// DefaultInboxSize is the number of notices an Inbox keeps.
const DefaultInboxSize = 50

// Inbox keeps the most recent notices in memory and mirrors them to the log.
type Inbox struct {
	mu      sync.Mutex
	notices []Notice
	size    int
	log     logger.Logger
}

func NewInbox(size int, log logger.Logger) *Inbox {
	if size <= 0 {
		size = DefaultInboxSize
	}
	return &Inbox{size: size, log: log.Named("notify")}
}

func (i *Inbox) Notify(n Notice) {
	if n.Time.IsZero() {
		n.Time = time.Now()
	}

	i.log.Info("notice",
		logger.String("level", n.Level),
		logger.String("source", n.Source),
		logger.String("message", n.Message))

	i.mu.Lock()
	defer i.mu.Unlock()
	i.notices = append(i.notices, n)
	if over := len(i.notices) - i.size; over > 0 {
		i.notices = append([]Notice(nil), i.notices[over:]...)
	}
}

// Recent returns the kept notices, newest first.
func (i *Inbox) Recent() []Notice {
	i.mu.Lock()
	defer i.mu.Unlock()

	out := make([]Notice, len(i.notices))
	for k, n := range i.notices {
		out[len(out)-1-k] = n
	}
	return out
}
