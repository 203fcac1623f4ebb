package models

import "time"

// User represents an account that can own and upload videos.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Video is the metadata record for a hosted video. The URL, size, and content
// type fields stay empty until the matching upload workflow completes.
type Video struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	ThumbnailURL string    `json:"thumbnailURL,omitempty"`
	VideoURL     string    `json:"videoURL,omitempty"`
	FileSize     int64     `json:"fileSize,omitempty"`
	ContentType  string    `json:"contentType,omitempty"`
	UserID       string    `json:"userID"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// RefreshToken is a persisted long-lived credential. It is usable only while
// RevokedAt is nil and ExpiresAt lies in the future.
type RefreshToken struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
