// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	authfeature "github.com/studycircle/studycircle/internal/app/features/auth"
	groupsfeature "github.com/studycircle/studycircle/internal/app/features/groups"
	healthfeature "github.com/studycircle/studycircle/internal/app/features/health"
	usersfeature "github.com/studycircle/studycircle/internal/app/features/users"
	"github.com/studycircle/studycircle/internal/app/membership"
	groupstore "github.com/studycircle/studycircle/internal/app/store/groups"
	userstore "github.com/studycircle/studycircle/internal/app/store/users"
	"github.com/studycircle/studycircle/internal/app/system/auditlog"
	"github.com/studycircle/studycircle/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE
// app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and any Startup hooks have completed. StudyCircle builds the stores
// and the membership engine once here and hands them to each feature.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	groups := groupstore.New(deps.MongoDatabase)
	users := userstore.New(deps.MongoDatabase)
	engine := membership.New(groups, users, logger)
	audit := auditlog.New(logger)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication
	authHandler := authfeature.NewHandler(users, sessionMgr, audit, logger)
	r.Mount("/api/auth", authfeature.Routes(authHandler))

	// Accounts: the caller's own record plus platform-admin role changes
	usersHandler := usersfeature.NewHandler(users, groups, audit, logger)
	r.Mount("/api/users", usersfeature.Routes(usersHandler, sessionMgr))

	// Group membership
	groupsHandler := groupsfeature.NewHandler(engine, users, audit, logger)
	r.Mount("/api/groups", groupsfeature.Routes(groupsHandler, sessionMgr))

	return r, nil
}
