package broker

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gamevault/catalog-services/internal/catalogsvc/models"
)

const eventsSubject = "catalog.events"

// Event is the envelope published on catalog.events.
type Event struct {
	ID   string          `json:"id"`
	Type string          `json:"type"` // e.g. "game.created", "rating.updated"
	At   time.Time       `json:"at"`
	Data json.RawMessage `json:"data"`
}

type GameEvent struct {
	GameID string `json:"game_id"`
	Title  string `json:"title,omitempty"`
}

type RatingEvent struct {
	GameID      string  `json:"game_id"`
	Rating      float64 `json:"rating"`
	RatingCount int64   `json:"rating_count"`
}

// Broker publishes catalog change notifications over NATS. Publishing
// is best-effort: a failed publish is logged, never surfaced to the
// request that caused it.
type Broker struct {
	Conn *nats.Conn
}

func NewBroker(nc *nats.Conn) *Broker {
	return &Broker{Conn: nc}
}

func (b *Broker) publish(eventType string, data interface{}) {
	raw, err := json.Marshal(data)
	if err != nil {
		log.Errorf("Error marshaling %s event data %s", eventType, err)
		return
	}

	payload, err := json.Marshal(Event{
		ID:   uuid.NewString(),
		Type: eventType,
		At:   time.Now().UTC(),
		Data: raw,
	})
	if err != nil {
		log.Errorf("Error marshaling %s event %s", eventType, err)
		return
	}

	if err := b.Conn.Publish(eventsSubject, payload); err != nil {
		log.Errorf("Error publishing %s event %s", eventType, err)
	}
}

func (b *Broker) GameCreated(game *models.Game) {
	b.publish("game.created", GameEvent{GameID: game.ID.Hex(), Title: game.Title})
}

func (b *Broker) GameUpdated(game *models.Game) {
	b.publish("game.updated", GameEvent{GameID: game.ID.Hex(), Title: game.Title})
}

func (b *Broker) GameDeleted(gameID primitive.ObjectID) {
	b.publish("game.deleted", GameEvent{GameID: gameID.Hex()})
}

func (b *Broker) RatingUpdated(gameID primitive.ObjectID, rating float64, count int64) {
	b.publish("rating.updated", RatingEvent{
		GameID:      gameID.Hex(),
		Rating:      rating,
		RatingCount: count,
	})
}
