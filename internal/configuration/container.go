package configuration

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/Suryanshu-Nabheet/Zenith/internal/auth"
	"github.com/Suryanshu-Nabheet/Zenith/internal/db"
	"github.com/Suryanshu-Nabheet/Zenith/internal/handler"
	"github.com/Suryanshu-Nabheet/Zenith/internal/hub"
	"github.com/Suryanshu-Nabheet/Zenith/internal/model"
	"github.com/Suryanshu-Nabheet/Zenith/internal/repo"
	"github.com/Suryanshu-Nabheet/Zenith/internal/service"
)

type Container struct {
	HistoryHandler handler.HistoryHandler
	Hub            *hub.Hub
	Verifier       *auth.Verifier
	Config         Config
	Logger         *zap.Logger

	// private - for cleanup
	mongoDB *mongo.Database
}

func BuildContainer(configPath string) (*Container, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	con, err := db.OpenConnection(config.Mongo.Uri, config.Mongo.Database)
	if err != nil {
		return nil, err
	}

	userRepo := repo.NewUserRepository(
		db.NewRepository[model.User](con, config.Mongo.UsersCollection), logger)
	conversationRepo := repo.NewConversationRepository(
		db.NewRepository[model.Conversation](con, config.Mongo.ConversationsCollection), logger)
	messageRepo := repo.NewMessageRepository(
		db.NewRepository[model.Message](con, config.Mongo.MessagesCollection), logger)
	receiptRepo := repo.NewReceiptRepository(
		db.NewRepository[model.ReadReceipt](con, config.Mongo.ReceiptsCollection), logger)
	callRepo := repo.NewCallRepository(
		db.NewRepository[model.Call](con, config.Mongo.CallsCollection), logger)

	verifier := auth.NewVerifier(config.Auth.JWTSecret)

	h := hub.NewHub(hub.Config{
		Logger:         logger,
		Verifier:       verifier,
		Users:          userRepo,
		Conversations:  conversationRepo,
		Messages:       messageRepo,
		Receipts:       receiptRepo,
		Calls:          callRepo,
		AllowedOrigins: config.Hub.AllowedOrigins,
		RingTimeout:    time.Duration(config.Hub.RingTimeoutSeconds) * time.Second,
	})

	historyService := service.NewHistoryService(userRepo, conversationRepo, messageRepo, callRepo)
	historyHandler := handler.NewHistoryHandler(historyService)

	return &Container{
		HistoryHandler: historyHandler,
		Hub:            h,
		Verifier:       verifier,
		Config:         *config,
		Logger:         logger,
		mongoDB:        con,
	}, nil
}

// Close gracefully shuts down all connections
func (c *Container) Close() error {
	// Stop the hub first (closes all WebSocket connections)
	if c.Hub != nil {
		c.Hub.Stop()
	}

	if c.Logger != nil {
		_ = c.Logger.Sync()
	}

	// Close MongoDB connection pool
	if c.mongoDB != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.mongoDB.Client().Disconnect(ctx); err != nil {
			return fmt.Errorf("failed to close MongoDB connection: %w", err)
		}
	}

	return nil
}
