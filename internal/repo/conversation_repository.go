package repo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/Suryanshu-Nabheet/Zenith/internal/apperr"
	"github.com/Suryanshu-Nabheet/Zenith/internal/db"
	"github.com/Suryanshu-Nabheet/Zenith/internal/model"
)

type conversationRepository struct {
	conversations *db.Repository[model.Conversation]
	logger        *zap.Logger
}

type ConversationRepository interface {
	FindByID(ctx context.Context, id string) (*model.Conversation, error)
	ListForUser(ctx context.Context, userID string, page int64) (*db.PaginatedResult[model.Conversation], error)
	ContactIDs(ctx context.Context, userID string) ([]string, error)
}

func NewConversationRepository(conversations *db.Repository[model.Conversation], logger *zap.Logger) ConversationRepository {
	return &conversationRepository{
		conversations: conversations,
		logger:        logger,
	}
}

func (r *conversationRepository) FindByID(ctx context.Context, id string) (*model.Conversation, error) {
	if id == "" {
		return nil, ErrInvalidID
	}

	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	conv, err := r.conversations.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) || errors.Is(err, primitive.ErrInvalidHex) {
			return nil, apperr.NotFound("conversation")
		}
		r.logger.Error("failed to fetch conversation",
			zap.String("conversation_id", id),
			zap.Error(err),
		)
		return nil, apperr.Persistence("failed to load conversation", err)
	}
	return conv, nil
}

func (r *conversationRepository) ListForUser(ctx context.Context, userID string, page int64) (*db.PaginatedResult[model.Conversation], error) {
	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	filter := db.NewFilter().Eq("participant_ids", userID).Build()
	result, err := r.conversations.FindWithPagination(ctx, filter, db.PaginationParams{
		Page:     page,
		PageSize: historyPageSize,
		SortBy:   "last_message_at",
		SortDesc: true,
	})
	if err != nil {
		return nil, apperr.Persistence("failed to list conversations", err)
	}
	return result, nil
}

// ContactIDs resolves the users sharing at least one conversation with
// userID. Presence changes broadcast only to this set, not to every
// connected session.
func (r *conversationRepository) ContactIDs(ctx context.Context, userID string) ([]string, error) {
	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	filter := db.NewFilter().Eq("participant_ids", userID).Build()
	values, err := r.conversations.Distinct(ctx, "participant_ids", filter)
	if err != nil {
		r.logger.Error("failed to resolve contacts",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, apperr.Persistence("failed to resolve contacts", err)
	}

	contacts := make([]string, 0, len(values))
	for _, v := range values {
		id, ok := v.(string)
		if !ok || id == userID {
			continue
		}
		contacts = append(contacts, id)
	}
	return contacts, nil
}
