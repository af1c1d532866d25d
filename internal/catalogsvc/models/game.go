package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlaceholderImage is used when a game is created without a cover image.
const PlaceholderImage = "https://upload.wikimedia.org/wikipedia/commons/thumb/6/65/No-Image-Placeholder.svg/832px-No-Image-Placeholder.svg.png"

// Game is a catalog entry. Rating and RatingCount are derived from list
// entries and are only ever written by the rating recompute, never by
// catalog mutations.
type Game struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Title           string             `bson:"title" json:"title"`
	Developer       string             `bson:"developer" json:"developer"`
	Publisher       string             `bson:"publisher" json:"publisher"`
	ReleaseDate     time.Time          `bson:"releaseDate" json:"releaseDate"`
	Platform        []string           `bson:"platform" json:"platform"`
	Description     string             `bson:"description" json:"description"`
	LongDescription string             `bson:"longDescription" json:"longDescription"`
	Genres          []string           `bson:"genres" json:"genres"`
	Rating          float64            `bson:"rating" json:"rating"`
	RatingCount     int64              `bson:"ratingCount" json:"ratingCount"`
	Image           string             `bson:"image" json:"image"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// GameUpdate carries the identity fields a catalog update may change.
// Rating fields are deliberately absent.
type GameUpdate struct {
	Title           string    `bson:"title" json:"title"`
	Developer       string    `bson:"developer" json:"developer"`
	Publisher       string    `bson:"publisher" json:"publisher"`
	ReleaseDate     time.Time `bson:"releaseDate" json:"releaseDate"`
	Platform        []string  `bson:"platform" json:"platform"`
	Description     string    `bson:"description" json:"description"`
	LongDescription string    `bson:"longDescription" json:"longDescription"`
	Genres          []string  `bson:"genres" json:"genres"`
	Image           string    `bson:"image" json:"image"`
}
