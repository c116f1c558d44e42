// internal/app/features/auth/handler.go
package auth

import (
	"context"

	sessionauth "github.com/studycircle/studycircle/internal/app/system/auth"
	"github.com/studycircle/studycircle/internal/app/system/auditlog"
	"github.com/studycircle/studycircle/internal/domain/models"
	"go.uber.org/zap"
)

// AccountStore is the slice of the user store that signup and login need.
type AccountStore interface {
	GetByEmail(ctx context.Context, email string) (models.User, error)
	Create(ctx context.Context, u models.User) (models.User, error)
}

// Handler serves signup, login, and logout.
type Handler struct {
	Accounts AccountStore
	Sessions *sessionauth.SessionManager
	Audit    *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(accounts AccountStore, sm *sessionauth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Accounts: accounts,
		Sessions: sm,
		Audit:    audit,
		Log:      logger,
	}
}
