package domain

import "time"

// User anchors ownership of links and clicks. Username builds the public URL.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// Profile is the public view of a user: active links in display order.
type Profile struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Links       []Link `json:"links"`
}
