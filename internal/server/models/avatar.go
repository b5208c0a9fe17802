package models

import "time"

// AvatarUpload describes a presigned upload slot for a user's avatar image.
type AvatarUpload struct {
	Key       string
	UploadURL string
	ImageURL  string
	ExpiresAt time.Time
}
