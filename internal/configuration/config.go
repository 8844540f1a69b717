package configuration

import (
	"encoding/json"
	"fmt"
	"os"
)

type MongoConfig struct {
	Uri                     string `json:"uri"`
	Database                string `json:"database"`
	UsersCollection         string `json:"usersCollection"`
	ConversationsCollection string `json:"conversationsCollection"`
	MessagesCollection      string `json:"messagesCollection"`
	ReceiptsCollection      string `json:"receiptsCollection"`
	CallsCollection         string `json:"callsCollection"`
}

type ServerConfig struct {
	AppPort    int `json:"app_port"`
	SocketPort int `json:"socket_port"`
}

type AuthConfig struct {
	JWTSecret string `json:"jwt_secret"`
}

type HubConfig struct {
	RingTimeoutSeconds int      `json:"ring_timeout_seconds"`
	AllowedOrigins     []string `json:"allowed_origins"`
}

type Config struct {
	Mongo  MongoConfig  `json:"mongo"`
	Server ServerConfig `json:"server"`
	Auth   AuthConfig   `json:"auth"`
	Hub    HubConfig    `json:"hub"`
}

func LoadConfig(configPath string) (*Config, error) {
	file, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(file, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if config.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth.jwt_secret is required")
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Server.AppPort == 0 {
		c.Server.AppPort = 8080
	}
	if c.Server.SocketPort == 0 {
		c.Server.SocketPort = 8081
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "zenith"
	}
	if c.Mongo.UsersCollection == "" {
		c.Mongo.UsersCollection = "users"
	}
	if c.Mongo.ConversationsCollection == "" {
		c.Mongo.ConversationsCollection = "conversations"
	}
	if c.Mongo.MessagesCollection == "" {
		c.Mongo.MessagesCollection = "messages"
	}
	if c.Mongo.ReceiptsCollection == "" {
		c.Mongo.ReceiptsCollection = "read_receipts"
	}
	if c.Mongo.CallsCollection == "" {
		c.Mongo.CallsCollection = "calls"
	}
}
