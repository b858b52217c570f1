// Package health reports process and datastore liveness for the /health
// endpoint. The room runtime itself is in-memory and has no database
// dependency; when DATABASE_URL is configured, Checker pings that
// database as a readiness signal only.
package health

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Status struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	DB      string `json:"db"`
}

// Checker wraps an optional pool. A nil pool means no DATABASE_URL was
// configured, which is a supported mode, not an error.
type Checker struct {
	pool *pgxpool.Pool
}

func NewChecker(pool *pgxpool.Pool) *Checker {
	return &Checker{pool: pool}
}

func (c *Checker) Health(ctx context.Context) Status {
	if c.pool == nil {
		return Status{Status: "ok", Message: "serving", DB: "disabled"}
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := c.pool.Ping(pingCtx); err != nil {
		log.Printf("[health] db ping failed: %v", err)
		return Status{Status: "degraded", Message: "database unreachable", DB: "unreachable"}
	}
	return Status{Status: "ok", Message: "serving", DB: "ok"}
}
