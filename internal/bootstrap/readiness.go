package bootstrap

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DependencyCheck is run once at startup.
type DependencyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// ConnectionChecker is implemented by clients that can verify their upstream is reachable.
type ConnectionChecker interface {
	CheckConnection(ctx context.Context) error
}

// CheckDependencies runs every check with its own timeout. Optional dependencies degrade at runtime
// (cache misses fall through, notifications are dropped), so failures are logged as warnings and the
// process keeps starting. It returns the number of failed checks.
func CheckDependencies(ctx context.Context, log *zap.Logger, timeout time.Duration, checks ...DependencyCheck) int {
	failed := 0
	for _, c := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, timeout)
		err := c.Check(checkCtx)
		cancel()
		if err != nil {
			failed++
			log.Warn("dependency not ready", zap.String("dependency", c.Name), zap.Error(err))
			continue
		}
		log.Info("dependency ready", zap.String("dependency", c.Name))
	}
	return failed
}
