package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/Suryanshu-Nabheet/Zenith/internal/apperr"
	"github.com/Suryanshu-Nabheet/Zenith/internal/db"
	"github.com/Suryanshu-Nabheet/Zenith/internal/model"
)

type messageRepository struct {
	messages *db.Repository[model.Message]
	logger   *zap.Logger
}

type MessageRepository interface {
	Insert(ctx context.Context, msg *model.Message) error
	FindByID(ctx context.Context, id string) (*model.Message, error)
	AdvanceStatus(ctx context.Context, id string, from []string, to string) (bool, error)
	Edit(ctx context.Context, id string, content string, at time.Time) error
	SoftDelete(ctx context.Context, id string, at time.Time) error
	History(ctx context.Context, conversationID string, page int64) (*db.PaginatedResult[model.Message], error)
}

func NewMessageRepository(messages *db.Repository[model.Message], logger *zap.Logger) MessageRepository {
	return &messageRepository{
		messages: messages,
		logger:   logger,
	}
}

// Insert persists a new message with a server-assigned id and creation time.
// Transient mongo errors are retried with backoff.
func (m *messageRepository) Insert(ctx context.Context, msg *model.Message) error {
	if msg == nil {
		return ErrInvalidDocument
	}
	if msg.ConversationID.IsZero() {
		return ErrInvalidID
	}

	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	msg.ID = primitive.NewObjectID()
	msg.CreatedAt = time.Now().UTC()

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			if err := waitForRetry(ctx, attempt); err != nil {
				return err
			}
		}

		_, err := m.messages.Create(ctx, *msg)
		if err == nil {
			m.logger.Info("message inserted",
				zap.String("message_id", msg.ID.Hex()),
				zap.String("conversation_id", msg.ConversationID.Hex()),
				zap.Int("attempt", attempt+1),
			)
			return nil
		}

		lastErr = err
		if !isRetryableError(err) {
			break
		}

		m.logger.Warn("message insert failed, retrying",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
		)
	}

	m.logger.Error("message insert exhausted retries",
		zap.Error(lastErr),
		zap.String("conversation_id", msg.ConversationID.Hex()),
	)
	return apperr.Persistence("failed to persist message", lastErr)
}

func (m *messageRepository) FindByID(ctx context.Context, id string) (*model.Message, error) {
	if id == "" {
		return nil, ErrInvalidID
	}

	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	msg, err := m.messages.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) || errors.Is(err, primitive.ErrInvalidHex) {
			return nil, apperr.NotFound("message")
		}
		return nil, apperr.Persistence("failed to load message", err)
	}
	return msg, nil
}

// AdvanceStatus moves the message status to `to` only while the stored
// status is one of `from`. The guard runs inside the update filter, so
// concurrent delivered/read handlers can never regress a status. Returns
// false when the guard did not hold.
func (m *messageRepository) AdvanceStatus(ctx context.Context, id string, from []string, to string) (bool, error) {
	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	filter := db.NewFilter().ObjectID("_id", id).In("status", from).Build()
	res, err := m.messages.UpdateWhere(ctx, filter, db.NewFilter().Eq("status", to).Build())
	if err != nil {
		m.logger.Error("message status update failed",
			zap.Error(err),
			zap.String("message_id", id),
			zap.String("to", to),
		)
		return false, apperr.Persistence("failed to update message status", err)
	}
	return res.MatchedCount > 0, nil
}

func (m *messageRepository) Edit(ctx context.Context, id string, content string, at time.Time) error {
	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	update := db.NewFilter().Eq("content", content).Eq("edited_at", at).Build()
	if _, err := m.messages.UpdateByID(ctx, id, update); err != nil {
		return apperr.Persistence("failed to edit message", err)
	}
	return nil
}

// SoftDelete stamps the tombstone. Content stays in the document for audit
// but history reads exclude tombstoned messages.
func (m *messageRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	if _, err := m.messages.UpdateByID(ctx, id, db.NewFilter().Eq("deleted_at", at).Build()); err != nil {
		return apperr.Persistence("failed to delete message", err)
	}
	return nil
}

func (m *messageRepository) History(ctx context.Context, conversationID string, page int64) (*db.PaginatedResult[model.Message], error) {
	if conversationID == "" {
		return nil, ErrInvalidID
	}

	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	filter := db.NewFilter().
		ObjectID("conversation_id", conversationID).
		Eq("deleted_at", nil).
		Build()

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			if err := waitForRetry(ctx, attempt); err != nil {
				return nil, err
			}
		}

		result, err := m.messages.FindWithPagination(ctx, filter, db.PaginationParams{
			Page:     page,
			PageSize: historyPageSize,
			SortBy:   "created_at",
			SortDesc: true,
		})
		if err == nil {
			m.logger.Debug("message history page loaded",
				zap.String("conversation_id", conversationID),
				zap.Int("count", len(result.Data)),
				zap.Int64("page", result.Page),
			)
			return result, nil
		}

		lastErr = err
		if !isRetryableError(err) {
			break
		}
	}

	return nil, fmt.Errorf("message history failed: %w", lastErr)
}
