package repo

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Suryanshu-Nabheet/Zenith/internal/apperr"
	"github.com/Suryanshu-Nabheet/Zenith/internal/db"
	"github.com/Suryanshu-Nabheet/Zenith/internal/model"
)

type receiptRepository struct {
	receipts *db.Repository[model.ReadReceipt]
	logger   *zap.Logger
}

type ReceiptRepository interface {
	Record(ctx context.Context, messageID string, userID string, at time.Time) (bool, error)
}

func NewReceiptRepository(receipts *db.Repository[model.ReadReceipt], logger *zap.Logger) ReceiptRepository {
	return &receiptRepository{
		receipts: receipts,
		logger:   logger,
	}
}

// Record upserts the receipt keyed by (messageID, userID). The unique key
// lives in the filter, so concurrent duplicate reads insert at most one
// document. Returns true only for the call that created the receipt.
func (r *receiptRepository) Record(ctx context.Context, messageID string, userID string, at time.Time) (bool, error) {
	if messageID == "" || userID == "" {
		return false, ErrInvalidID
	}

	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	filter := db.NewFilter().
		ObjectID("message_id", messageID).
		Eq("user_id", userID).
		Build()

	res, err := r.receipts.UpsertWhere(ctx, filter, db.NewFilter().Eq("read_at", at).Build())
	if err != nil {
		r.logger.Error("read receipt upsert failed",
			zap.String("message_id", messageID),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return false, apperr.Persistence("failed to record read receipt", err)
	}

	created := res.UpsertedCount > 0
	if created {
		r.logger.Debug("read receipt recorded",
			zap.String("message_id", messageID),
			zap.String("user_id", userID),
		)
	}
	return created, nil
}
