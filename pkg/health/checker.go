package health

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Checker reports nil when the dependency is healthy
type Checker func() error

// CheckerConfig holds the timeout applied to each probe
type CheckerConfig struct {
	Timeout time.Duration
}

// DefaultCheckerConfig returns a 2 second probe timeout
func DefaultCheckerConfig() CheckerConfig {
	return CheckerConfig{Timeout: 2 * time.Second}
}

// DatabaseChecker returns a health check function for PostgreSQL database
func DatabaseChecker(db *sql.DB) Checker {
	return DatabaseCheckerWithConfig(db, DefaultCheckerConfig())
}

// DatabaseCheckerWithConfig is DatabaseChecker with a custom timeout
func DatabaseCheckerWithConfig(db *sql.DB, cfg CheckerConfig) Checker {
	return func() error {
		if db == nil {
			return errors.New("database connection is nil")
		}
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()
		return db.PingContext(ctx)
	}
}

// RedisChecker returns a health check function for Redis
func RedisChecker(client *redis.Client) Checker {
	return func() error {
		if client == nil {
			return errors.New("redis client is nil")
		}
		ctx, cancel := context.WithTimeout(context.Background(), DefaultCheckerConfig().Timeout)
		defer cancel()
		return client.Ping(ctx).Err()
	}
}

// CompositeChecker runs every checker and joins the failures
func CompositeChecker(checkers map[string]Checker) Checker {
	return func() error {
		var failures []string
		for name, check := range checkers {
			if err := check(); err != nil {
				failures = append(failures, fmt.Sprintf("%s: %v", name, err))
			}
		}
		if len(failures) > 0 {
			return errors.New(strings.Join(failures, "; "))
		}
		return nil
	}
}

// AsMap converts named checkers to the map shape expected by common.HealthCheckWithDeps
func AsMap(checkers map[string]Checker) map[string]func() error {
	out := make(map[string]func() error, len(checkers))
	for name, check := range checkers {
		out[name] = check
	}
	return out
}
