package repo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/Suryanshu-Nabheet/Zenith/internal/apperr"
	"github.com/Suryanshu-Nabheet/Zenith/internal/db"
	"github.com/Suryanshu-Nabheet/Zenith/internal/model"
)

type callRepository struct {
	calls  *db.Repository[model.Call]
	logger *zap.Logger
}

type CallRepository interface {
	Insert(ctx context.Context, call *model.Call) error
	FindByID(ctx context.Context, id string) (*model.Call, error)
	Transition(ctx context.Context, id string, from []string, to string, endTime *time.Time, duration int) (bool, error)
	HistoryForUser(ctx context.Context, userID string, page int64) (*db.PaginatedResult[model.Call], error)
}

func NewCallRepository(calls *db.Repository[model.Call], logger *zap.Logger) CallRepository {
	return &callRepository{
		calls:  calls,
		logger: logger,
	}
}

func (r *callRepository) Insert(ctx context.Context, call *model.Call) error {
	if call == nil {
		return ErrInvalidDocument
	}

	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	call.ID = primitive.NewObjectID()
	call.StartTime = time.Now().UTC()
	call.Status = model.CallRinging

	if _, err := r.calls.Create(ctx, *call); err != nil {
		r.logger.Error("call insert failed",
			zap.String("caller_id", call.CallerID),
			zap.String("receiver_id", call.ReceiverID),
			zap.Error(err),
		)
		return apperr.Persistence("failed to persist call", err)
	}

	r.logger.Info("call created",
		zap.String("call_id", call.ID.Hex()),
		zap.String("caller_id", call.CallerID),
		zap.String("receiver_id", call.ReceiverID),
		zap.String("type", call.Type),
	)
	return nil
}

func (r *callRepository) FindByID(ctx context.Context, id string) (*model.Call, error) {
	if id == "" {
		return nil, ErrInvalidID
	}

	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	call, err := r.calls.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) || errors.Is(err, primitive.ErrInvalidHex) {
			return nil, apperr.NotFound("call")
		}
		return nil, apperr.Persistence("failed to load call", err)
	}
	return call, nil
}

// Transition moves the call status to `to` only while the stored status is
// one of `from`, stamping endTime and duration when given. The guard runs
// inside the update filter so racing accept/reject/end/timeout handlers
// cannot move a call out of a terminal state. Returns false when the guard
// did not hold.
func (r *callRepository) Transition(ctx context.Context, id string, from []string, to string, endTime *time.Time, duration int) (bool, error) {
	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	filter := db.NewFilter().ObjectID("_id", id).In("status", from).Build()

	update := db.NewFilter().Eq("status", to)
	if endTime != nil {
		update.Eq("end_time", *endTime)
	}
	if duration > 0 {
		update.Eq("duration", duration)
	}

	res, err := r.calls.UpdateWhere(ctx, filter, update.Build())
	if err != nil {
		r.logger.Error("call transition failed",
			zap.String("call_id", id),
			zap.String("to", to),
			zap.Error(err),
		)
		return false, apperr.Persistence("failed to update call", err)
	}

	if res.MatchedCount > 0 {
		r.logger.Info("call transitioned",
			zap.String("call_id", id),
			zap.String("to", to),
		)
	}
	return res.MatchedCount > 0, nil
}

func (r *callRepository) HistoryForUser(ctx context.Context, userID string, page int64) (*db.PaginatedResult[model.Call], error) {
	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	filter := bson.M{"$or": bson.A{
		bson.M{"caller_id": userID},
		bson.M{"receiver_id": userID},
	}}
	result, err := r.calls.FindWithPagination(ctx, filter, db.PaginationParams{
		Page:     page,
		PageSize: historyPageSize,
		SortBy:   "start_time",
		SortDesc: true,
	})
	if err != nil {
		return nil, apperr.Persistence("failed to list calls", err)
	}
	return result, nil
}
