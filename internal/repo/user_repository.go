package repo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/Suryanshu-Nabheet/Zenith/internal/apperr"
	"github.com/Suryanshu-Nabheet/Zenith/internal/db"
	"github.com/Suryanshu-Nabheet/Zenith/internal/model"
)

type userRepository struct {
	users  *db.Repository[model.User]
	logger *zap.Logger
}

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	SetPresence(ctx context.Context, id string, online bool, lastSeen time.Time) error
	SetStatus(ctx context.Context, id string, status string) error
}

func NewUserRepository(users *db.Repository[model.User], logger *zap.Logger) UserRepository {
	return &userRepository{
		users:  users,
		logger: logger,
	}
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, ErrInvalidID
	}

	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	user, err := r.users.FindOne(ctx, bson.M{"_id": id})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("user")
		}
		return nil, apperr.Persistence("failed to load user", err)
	}
	return user, nil
}

func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	users, err := r.users.FindAll(ctx, bson.M{})
	if err != nil {
		return nil, apperr.Persistence("failed to list users", err)
	}
	return users, nil
}

// SetPresence records the durable online flag and last-seen timestamp.
func (r *userRepository) SetPresence(ctx context.Context, id string, online bool, lastSeen time.Time) error {
	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	update := db.NewFilter().Eq("is_online", online).Eq("last_seen", lastSeen).Build()
	if _, err := r.users.UpdateWhere(ctx, bson.M{"_id": id}, update); err != nil {
		r.logger.Error("failed to update presence",
			zap.String("user_id", id),
			zap.Bool("online", online),
			zap.Error(err),
		)
		return apperr.Persistence("failed to update presence", err)
	}
	return nil
}

func (r *userRepository) SetStatus(ctx context.Context, id string, status string) error {
	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	if _, err := r.users.UpdateWhere(ctx, bson.M{"_id": id}, db.NewFilter().Eq("status", status).Build()); err != nil {
		return apperr.Persistence("failed to update status", err)
	}
	return nil
}
