package health

import (
	"context"
	"database/sql"
	"time"

	"github.com/redis/go-redis/v9"

	"docanalysis-backend/internal/shared/storage/db"
)

const StatusOK = "ok"

// Service reports the reachability of the backing stores. Nil dependencies
// are not checked.
type Service struct {
	DB      *sql.DB
	Redis   *redis.Client
	Timeout time.Duration
}

// NewService constructs a new health service.
func NewService(database *sql.DB, cache *redis.Client) *Service {
	return &Service{DB: database, Redis: cache, Timeout: 2 * time.Second}
}

// Status returns one entry per dependency, "ok" or the failure message.
func (s *Service) Status() map[string]string {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	checks := map[string]string{"storage": StatusOK}
	if s.DB != nil {
		checks["database"] = result(db.Ping(ctx, s.DB, timeout))
	}
	if s.Redis != nil {
		checks["cache"] = result(s.Redis.Ping(ctx).Err())
	}
	return checks
}

func result(err error) string {
	if err != nil {
		return err.Error()
	}
	return StatusOK
}
