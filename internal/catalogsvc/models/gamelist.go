package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Entry statuses, matching the list status enum exposed to clients.
const (
	StatusPlaying    = "Playing"
	StatusPlayed     = "Played"
	StatusOnHold     = "On hold"
	StatusDropped    = "Dropped"
	StatusPlanToPlay = "Plan to play"
)

var listStatuses = []string{
	StatusPlaying,
	StatusPlayed,
	StatusOnHold,
	StatusDropped,
	StatusPlanToPlay,
}

// ListStatuses returns the valid entry statuses.
func ListStatuses() []string {
	out := make([]string, len(listStatuses))
	copy(out, listStatuses)
	return out
}

// ValidListStatus reports whether s is one of the entry statuses.
func ValidListStatus(s string) bool {
	for _, v := range listStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// GameListEntry links one user to one game. At most one entry exists
// per (userId, gameId) pair; the gamelists collection carries a unique
// compound index on the pair. Rating is a pointer so an unrated entry
// stays out of the rating aggregation.
type GameListEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	GameID    primitive.ObjectID `bson:"gameId" json:"gameId"`
	Status    string             `bson:"status" json:"status"`
	Review    string             `bson:"review,omitempty" json:"review,omitempty"`
	Rating    *float64           `bson:"rating,omitempty" json:"rating,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
