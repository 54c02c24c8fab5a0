package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/pathways/internal/domain"
	"github.com/MrSnakeDoc/pathways/internal/logger"
	"github.com/MrSnakeDoc/pathways/internal/scheduler"
	"github.com/redis/go-redis/v9"
)

// Readiness reports the state of the store's one-time open.
type Readiness interface {
	Ready() <-chan struct{}
	Err() error
}

// Pathways is the per-record view used by the REST routes.
type Pathways interface {
	GetPathways(ctx context.Context) ([]domain.Pathway, error)
	GetPathway(ctx context.Context, id string) (domain.Pathway, bool, error)
	DeletePathway(ctx context.Context, id string) error
}

// LegacyStorage is the callback-style bulk API served under /storage.
type LegacyStorage interface {
	Get(keys any, callback func(result map[string]any))
	Set(items map[string]any, callback func())
	Remove(keys any, callback func())
	Clear(callback func())
}

// Notices lists recent user-visible notifications.
type Notices interface {
	Recent() []scheduler.Notice
}

type Deps struct {
	Logger        logger.Logger
	StartTime     time.Time
	Version       string
	Commit        string
	BuildDate     string
	GoVersion     string
	TimeNow       func() time.Time // for testing, defaults to time.Now
	AllowedHosts  []string         // Host headers allowed on /storage and /api
	AllowedCIDRS  []string         // IPs allowed to access healthz/readyz/status endpoints
	TrustProxy    bool             // true if running behind a trusted reverse proxy
	RateBurst     int              // per-IP burst on /storage
	RatePerMin    int              // per-IP refill on /storage
	Backend       string           // store backend name, for /status
	Readiness     Readiness        // store open state
	Pathways      Pathways         // per-record pathway access
	Storage       LegacyStorage    // legacy bulk API
	Notices       Notices          // recent notifications (nil disables the route)
	RedisClient   *redis.Client    // set only for the redis backend
	CommitTrigger chan struct{}    // manual auto-commit trigger (nil if auto-commit disabled)
	LinkAudit     bool             // link auditor running
}
