package service

import (
	"context"

	"github.com/Suryanshu-Nabheet/Zenith/internal/apperr"
	"github.com/Suryanshu-Nabheet/Zenith/internal/db"
	"github.com/Suryanshu-Nabheet/Zenith/internal/model"
	"github.com/Suryanshu-Nabheet/Zenith/internal/repo"
)

// HistoryService serves the REST read side: conversation lists, paged
// message history, contact listings and call logs. All queries are scoped
// to the requesting user.
type HistoryService interface {
	Conversations(ctx context.Context, userID string, page int64) (*db.PaginatedResult[model.Conversation], error)
	Messages(ctx context.Context, userID, conversationID string, page int64) (*db.PaginatedResult[model.Message], error)
	Users(ctx context.Context) ([]model.User, error)
	Calls(ctx context.Context, userID string, page int64) (*db.PaginatedResult[model.Call], error)
}

type historyService struct {
	users         repo.UserRepository
	conversations repo.ConversationRepository
	messages      repo.MessageRepository
	calls         repo.CallRepository
}

func NewHistoryService(
	users repo.UserRepository,
	conversations repo.ConversationRepository,
	messages repo.MessageRepository,
	calls repo.CallRepository,
) HistoryService {
	return &historyService{
		users:         users,
		conversations: conversations,
		messages:      messages,
		calls:         calls,
	}
}

func (s *historyService) Conversations(ctx context.Context, userID string, page int64) (*db.PaginatedResult[model.Conversation], error) {
	return s.conversations.ListForUser(ctx, userID, page)
}

// Messages returns one page of a conversation's history, newest first.
// Requesters outside the participant set get an authorization error, not
// an empty page.
func (s *historyService) Messages(ctx context.Context, userID, conversationID string, page int64) (*db.PaginatedResult[model.Message], error) {
	conv, err := s.conversations.FindByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, apperr.Authorization("not a participant of this conversation")
	}

	result, err := s.messages.History(ctx, conversationID, page)
	if err != nil {
		return nil, err
	}

	s.attachSenders(ctx, result.Data)
	return result, nil
}

func (s *historyService) Users(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

func (s *historyService) Calls(ctx context.Context, userID string, page int64) (*db.PaginatedResult[model.Call], error) {
	return s.calls.HistoryForUser(ctx, userID, page)
}

// attachSenders embeds sender profiles into a message page, resolving
// each distinct sender once. A missing sender leaves the field nil rather
// than failing the page.
func (s *historyService) attachSenders(ctx context.Context, msgs []model.Message) {
	profiles := make(map[string]*model.UserProfile)
	for i := range msgs {
		senderID := msgs[i].SenderID
		profile, seen := profiles[senderID]
		if !seen {
			if u, err := s.users.FindByID(ctx, senderID); err == nil {
				profile = u.Profile()
			}
			profiles[senderID] = profile
		}
		msgs[i].Sender = profile
	}
}
