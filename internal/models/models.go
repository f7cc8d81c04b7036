package models

import "time"

// User represents a registered account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"`
	AvatarURL    *string   `json:"avatar_url,omitempty"`
	Bio          *string   `json:"bio,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Pin represents an image post authored by a user.
type Pin struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	Link        string    `json:"link,omitempty"`
	Category    string    `json:"category,omitempty"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Owner is the denormalized author summary embedded in feed items.
type Owner struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// PinDetail is a pin enriched with its owner and read-time counts.
// Liked and Saved reflect the requesting user and are always false
// for anonymous requests.
type PinDetail struct {
	Pin
	Owner      Owner `json:"owner"`
	LikesCount int   `json:"likes_count"`
	SavesCount int   `json:"saves_count"`
	Liked      bool  `json:"liked"`
	Saved      bool  `json:"saved"`
}

// PinPage is one page of the feed.
type PinPage struct {
	Pins    []*PinDetail `json:"pins"`
	Page    int          `json:"page"`
	Limit   int          `json:"limit"`
	HasMore bool         `json:"has_more"`
}

// Profile is a user's public view plus read-time aggregates.
type Profile struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	AvatarURL      *string   `json:"avatar_url,omitempty"`
	Bio            *string   `json:"bio,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	PinsCount      int       `json:"pins_count"`
	FollowersCount int       `json:"followers_count"`
	FollowingCount int       `json:"following_count"`
}

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
