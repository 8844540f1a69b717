package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Suryanshu-Nabheet/Zenith/internal/apperr"
	"github.com/Suryanshu-Nabheet/Zenith/internal/db"
	"github.com/Suryanshu-Nabheet/Zenith/internal/model"
)

type stubUsers struct {
	users map[string]*model.User
}

func (s *stubUsers) FindByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, apperr.NotFound("user")
}

func (s *stubUsers) List(context.Context) ([]model.User, error) {
	out := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, nil
}

func (s *stubUsers) SetPresence(context.Context, string, bool, time.Time) error { return nil }
func (s *stubUsers) SetStatus(context.Context, string, string) error            { return nil }

type stubConversations struct {
	conv *model.Conversation
}

func (s *stubConversations) FindByID(_ context.Context, id string) (*model.Conversation, error) {
	if s.conv != nil && s.conv.ID.Hex() == id {
		return s.conv, nil
	}
	return nil, apperr.NotFound("conversation")
}

func (s *stubConversations) ListForUser(_ context.Context, userID string, page int64) (*db.PaginatedResult[model.Conversation], error) {
	var out []model.Conversation
	if s.conv != nil && s.conv.HasParticipant(userID) {
		out = append(out, *s.conv)
	}
	return &db.PaginatedResult[model.Conversation]{Data: out, Total: int64(len(out)), Page: page}, nil
}

func (s *stubConversations) ContactIDs(context.Context, string) ([]string, error) { return nil, nil }

type stubMessages struct {
	page *db.PaginatedResult[model.Message]
}

func (s *stubMessages) Insert(context.Context, *model.Message) error { return nil }
func (s *stubMessages) FindByID(context.Context, string) (*model.Message, error) {
	return nil, apperr.NotFound("message")
}
func (s *stubMessages) AdvanceStatus(context.Context, string, []string, string) (bool, error) {
	return false, nil
}
func (s *stubMessages) Edit(context.Context, string, string, time.Time) error    { return nil }
func (s *stubMessages) SoftDelete(context.Context, string, time.Time) error      { return nil }
func (s *stubMessages) History(_ context.Context, _ string, _ int64) (*db.PaginatedResult[model.Message], error) {
	return s.page, nil
}

type stubCalls struct {
	page *db.PaginatedResult[model.Call]
}

func (s *stubCalls) Insert(context.Context, *model.Call) error { return nil }
func (s *stubCalls) FindByID(context.Context, string) (*model.Call, error) {
	return nil, apperr.NotFound("call")
}
func (s *stubCalls) Transition(context.Context, string, []string, string, *time.Time, int) (bool, error) {
	return false, nil
}
func (s *stubCalls) HistoryForUser(_ context.Context, _ string, _ int64) (*db.PaginatedResult[model.Call], error) {
	return s.page, nil
}

func TestMessagesRequiresParticipation(t *testing.T) {
	conv := &model.Conversation{
		ID:             primitive.NewObjectID(),
		ParticipantIDs: []string{"alice", "bob"},
	}
	svc := NewHistoryService(
		&stubUsers{users: map[string]*model.User{}},
		&stubConversations{conv: conv},
		&stubMessages{page: &db.PaginatedResult[model.Message]{}},
		&stubCalls{},
	)

	_, err := svc.Messages(context.Background(), "mallory", conv.ID.Hex(), 1)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeAuthorization))
}

func TestMessagesUnknownConversation(t *testing.T) {
	svc := NewHistoryService(
		&stubUsers{users: map[string]*model.User{}},
		&stubConversations{},
		&stubMessages{},
		&stubCalls{},
	)

	_, err := svc.Messages(context.Background(), "alice", primitive.NewObjectID().Hex(), 1)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestMessagesAttachesSenderProfiles(t *testing.T) {
	conv := &model.Conversation{
		ID:             primitive.NewObjectID(),
		ParticipantIDs: []string{"alice", "bob"},
	}
	page := &db.PaginatedResult[model.Message]{
		Data: []model.Message{
			{ID: primitive.NewObjectID(), SenderID: "alice", Content: "one"},
			{ID: primitive.NewObjectID(), SenderID: "alice", Content: "two"},
			{ID: primitive.NewObjectID(), SenderID: "ghost", Content: "three"},
		},
		Total: 3,
	}
	svc := NewHistoryService(
		&stubUsers{users: map[string]*model.User{
			"alice": {ID: "alice", Name: "Alice"},
		}},
		&stubConversations{conv: conv},
		&stubMessages{page: page},
		&stubCalls{},
	)

	result, err := svc.Messages(context.Background(), "bob", conv.ID.Hex(), 1)
	require.NoError(t, err)
	require.Len(t, result.Data, 3)

	require.NotNil(t, result.Data[0].Sender)
	assert.Equal(t, "Alice", result.Data[0].Sender.Name)
	assert.NotNil(t, result.Data[1].Sender)

	// A sender that no longer resolves leaves the profile empty instead
	// of failing the page.
	assert.Nil(t, result.Data[2].Sender)
}

func TestConversationsScopedToUser(t *testing.T) {
	conv := &model.Conversation{
		ID:             primitive.NewObjectID(),
		ParticipantIDs: []string{"alice", "bob"},
	}
	svc := NewHistoryService(
		&stubUsers{users: map[string]*model.User{}},
		&stubConversations{conv: conv},
		&stubMessages{},
		&stubCalls{},
	)

	mine, err := svc.Conversations(context.Background(), "alice", 1)
	require.NoError(t, err)
	assert.Len(t, mine.Data, 1)

	theirs, err := svc.Conversations(context.Background(), "mallory", 1)
	require.NoError(t, err)
	assert.Empty(t, theirs.Data)
}
