package model

import "time"

type Article struct {
	ID             string    `gorm:"primaryKey;size:36" bson:"_id" json:"-"`
	Slug           string    `gorm:"size:255;not null;uniqueIndex" bson:"slug" json:"slug"`
	Title          string    `gorm:"size:255;not null" bson:"title" json:"title"`
	Description    string    `gorm:"type:text" bson:"description" json:"description"`
	Body           string    `gorm:"type:text" bson:"body" json:"body"`
	Tags           []string  `gorm:"serializer:json" bson:"tags" json:"tagList"`
	Author         string    `gorm:"size:64;not null" bson:"author" json:"author"`
	AuthorID       string    `gorm:"size:36;not null;index" bson:"author_id" json:"-"`
	Favorited      bool      `bson:"favorited" json:"favorited"`
	FavoritesCount int       `bson:"favorites_count" json:"favoritesCount"`
	CreatedAt      time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updatedAt"`
}
