// internal/app/features/groups/handler.go
package groups

import (
	"context"

	"github.com/studycircle/studycircle/internal/app/membership"
	"github.com/studycircle/studycircle/internal/app/system/auditlog"
	"github.com/studycircle/studycircle/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// UserDirectory resolves member ids to user records for group detail
// responses.
type UserDirectory interface {
	GetManyByID(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
}

// Handler is the shared dependency container for the groups feature.
// Every route delegates the actual membership rules to the engine; the
// handlers only translate HTTP to engine calls and back.
type Handler struct {
	Engine *membership.Engine
	Users  UserDirectory
	Audit  *auditlog.Logger
	Log    *zap.Logger
}

// NewHandler constructs a groups Handler. It is called from the
// bootstrap BuildHandler function once the stores and engine exist.
func NewHandler(engine *membership.Engine, users UserDirectory, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Engine: engine,
		Users:  users,
		Audit:  audit,
		Log:    logger,
	}
}
