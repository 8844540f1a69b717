package model

import "time"

// User is the user document in MongoDB. The document id is the external
// auth subject, so realtime and REST layers address users by the same key.
type User struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Email     string    `json:"email" bson:"email"`
	Avatar    string    `json:"avatar,omitempty" bson:"avatar,omitempty"`
	Status    string    `json:"status,omitempty" bson:"status,omitempty"`
	IsOnline  bool      `json:"isOnline" bson:"is_online"`
	LastSeen  time.Time `json:"lastSeen" bson:"last_seen"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

// UserProfile is the public subset of User embedded in fan-out payloads.
type UserProfile struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// Profile returns the user's public profile fields.
func (u *User) Profile() *UserProfile {
	return &UserProfile{ID: u.ID, Name: u.Name, Avatar: u.Avatar}
}
