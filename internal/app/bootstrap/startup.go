// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/studycircle/studycircle/internal/app/membership"
	groupstore "github.com/studycircle/studycircle/internal/app/store/groups"
	userstore "github.com/studycircle/studycircle/internal/app/store/users"
	"github.com/studycircle/studycircle/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
//
// StudyCircle applies timeout overrides from the environment and, unless
// disabled, runs a reconcile pass that repairs user membership references
// left dangling by interrupted writes.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeout overrides applied", zap.Int("count", n))
	}

	if !appCfg.ReconcileOnStart {
		return nil
	}

	engine := membership.New(
		groupstore.New(deps.MongoDatabase),
		userstore.New(deps.MongoDatabase),
		logger,
	)

	rctx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()

	report, err := engine.Reconcile(rctx)
	if err != nil {
		// A failed repair pass is logged but does not block startup; the
		// engine tolerates stale member_of references at read time.
		logger.Error("startup reconcile failed", zap.Error(err))
		return nil
	}
	logger.Info("startup reconcile complete",
		zap.Int("users_checked", report.UsersChecked),
		zap.Int("users_fixed", report.UsersFixed),
		zap.Int("groups", report.Groups))
	return nil
}
