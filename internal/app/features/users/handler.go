// internal/app/features/users/handler.go
package users

import (
	"context"

	userstore "github.com/studycircle/studycircle/internal/app/store/users"
	"github.com/studycircle/studycircle/internal/app/system/auditlog"
	"github.com/studycircle/studycircle/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// UserStore is the slice of the user store this feature needs.
type UserStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, upd userstore.ProfileUpdate) error
	UpdateRole(ctx context.Context, id primitive.ObjectID, role string) error
}

// GroupDirectory resolves the groups listed in a user's member_of.
type GroupDirectory interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error)
}

// Handler serves the signed-in user's own record plus platform-admin
// account management.
type Handler struct {
	Users  UserStore
	Groups GroupDirectory
	Audit  *auditlog.Logger
	Log    *zap.Logger
}

func NewHandler(users UserStore, groups GroupDirectory, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:  users,
		Groups: groups,
		Audit:  audit,
		Log:    logger,
	}
}
