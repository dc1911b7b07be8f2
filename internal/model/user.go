package model

import "time"

const DefaultImageURL = "https://api.realworld.io/images/smiley-cyrus.jpeg"

type User struct {
	ID           string    `gorm:"primaryKey;size:36" bson:"_id" json:"-"`
	Username     string    `gorm:"size:64;not null" bson:"username" json:"username"`
	Email        string    `gorm:"size:128;not null;uniqueIndex" bson:"email" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" bson:"password" json:"-"`
	Bio          string    `gorm:"type:text" bson:"bio" json:"bio"`
	Image        string    `gorm:"size:512" bson:"image" json:"image"`
	Active       bool      `gorm:"not null" bson:"active" json:"active"`
	CreatedAt    time.Time `bson:"created_at" json:"-"`
	UpdatedAt    time.Time `bson:"updated_at" json:"-"`
}

// UserUpdate is a partial profile change. Empty fields are left untouched.
type UserUpdate struct {
	Username     string
	Email        string
	PasswordHash string
	Bio          string
	Image        string
}

func (u UserUpdate) IsEmpty() bool {
	return u.Username == "" && u.Email == "" && u.PasswordHash == "" && u.Bio == "" && u.Image == ""
}

// Apply merges the non-empty fields of u into user.
func (u UserUpdate) Apply(user *User) {
	if u.Username != "" {
		user.Username = u.Username
	}
	if u.Email != "" {
		user.Email = u.Email
	}
	if u.PasswordHash != "" {
		user.PasswordHash = u.PasswordHash
	}
	if u.Bio != "" {
		user.Bio = u.Bio
	}
	if u.Image != "" {
		user.Image = u.Image
	}
}

// Profile is the outward view of a user: no password hash, no internal id.
type Profile struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Bio      string `json:"bio"`
	Image    string `json:"image"`
	Active   bool   `json:"active"`
	Token    string `json:"token,omitempty"`
}

func (u *User) Profile() Profile {
	return Profile{
		Username: u.Username,
		Email:    u.Email,
		Bio:      u.Bio,
		Image:    u.Image,
		Active:   u.Active,
	}
}
