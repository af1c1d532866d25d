package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gamevault/catalog-services/internal/catalogsvc/models"
	"github.com/gamevault/catalog-services/internal/catalogsvc/service"
)

const gameListsCollection = "gamelists"

type GameListStore struct {
	col *mongo.Collection
}

func NewGameListStore(db *mongo.Database) *GameListStore {
	return &GameListStore{col: db.Collection(gameListsCollection)}
}

// Insert creates a new list entry. The unique (userId, gameId) index
// turns a concurrent double add into a Conflict instead of a duplicate
// pair.
func (s *GameListStore) Insert(ctx context.Context, entry models.GameListEntry) (*models.GameListEntry, error) {
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	res, err := s.col.InsertOne(ctx, entry)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: list entry for this user and game", service.ErrConflict)
		}
		return nil, fmt.Errorf("failed to insert list entry: %w", err)
	}

	entry.ID = res.InsertedID.(primitive.ObjectID)
	return &entry, nil
}

// Update merges status, review and rating into the existing entry for
// the pair. Review and rating are only written when provided.
func (s *GameListStore) Update(ctx context.Context, userID, gameID primitive.ObjectID, status, review string, rating *float64) (*models.GameListEntry, error) {
	set := bson.D{
		{Key: "status", Value: status},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}
	if review != "" {
		set = append(set, bson.E{Key: "review", Value: review})
	}
	if rating != nil {
		set = append(set, bson.E{Key: "rating", Value: *rating})
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	entry := &models.GameListEntry{}
	err := s.col.FindOneAndUpdate(ctx,
		pairFilter(userID, gameID),
		bson.D{{Key: "$set", Value: set}},
		opts,
	).Decode(entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update list entry: %w", err)
	}

	return entry, nil
}

func (s *GameListStore) Delete(ctx context.Context, userID, gameID primitive.ObjectID) error {
	_, err := s.col.DeleteOne(ctx, pairFilter(userID, gameID))
	if err != nil {
		return fmt.Errorf("failed to delete list entry: %w", err)
	}
	return nil
}

func (s *GameListStore) DeleteByGame(ctx context.Context, gameID primitive.ObjectID) error {
	_, err := s.col.DeleteMany(ctx, bson.D{{Key: "gameId", Value: gameID}})
	if err != nil {
		return fmt.Errorf("failed to delete list entries for game: %w", err)
	}
	return nil
}

func (s *GameListStore) DeleteByUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.col.DeleteMany(ctx, bson.D{{Key: "userId", Value: userID}})
	if err != nil {
		return fmt.Errorf("failed to delete list entries for user: %w", err)
	}
	return nil
}

func (s *GameListStore) Get(ctx context.Context, userID, gameID primitive.ObjectID) (*models.GameListEntry, error) {
	entry := &models.GameListEntry{}
	err := s.col.FindOne(ctx, pairFilter(userID, gameID)).Decode(entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil // no entry for the pair
		}
		return nil, fmt.Errorf("failed to get list entry: %w", err)
	}
	return entry, nil
}

func (s *GameListStore) FindByGame(ctx context.Context, gameID primitive.ObjectID) ([]models.GameListEntry, error) {
	cur, err := s.col.Find(ctx, bson.D{{Key: "gameId", Value: gameID}})
	if err != nil {
		return nil, fmt.Errorf("failed to find list entries for game: %w", err)
	}

	var entries []models.GameListEntry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode list entries: %w", err)
	}
	return entries, nil
}

func (s *GameListStore) All(ctx context.Context) ([]models.GameListEntry, error) {
	cur, err := s.col.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	var entries []models.GameListEntry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode list entries: %w", err)
	}
	return entries, nil
}

func (s *GameListStore) CountByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	n, err := s.col.CountDocuments(ctx, bson.D{{Key: "userId", Value: userID}})
	if err != nil {
		return 0, fmt.Errorf("failed to count list entries: %w", err)
	}
	return n, nil
}

// PageByUser returns one page of a user's entries in native order.
func (s *GameListStore) PageByUser(ctx context.Context, userID primitive.ObjectID, page, records int) ([]models.GameListEntry, error) {
	opts := options.Find().
		SetSkip(int64((page - 1) * records)).
		SetLimit(int64(records))

	cur, err := s.col.Find(ctx, bson.D{{Key: "userId", Value: userID}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query list page: %w", err)
	}

	var entries []models.GameListEntry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode list page: %w", err)
	}
	return entries, nil
}

// AggregateRating computes the arithmetic mean and count of ratings over
// all entries for a game that carry a non-null rating. Zero rated
// entries yields (0, 0, nil), which is a normal branch, not an error.
func (s *GameListStore) AggregateRating(ctx context.Context, gameID primitive.ObjectID) (float64, int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "gameId", Value: gameID},
			{Key: "rating", Value: bson.D{
				{Key: "$exists", Value: true},
				{Key: "$ne", Value: nil},
			}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$gameId"},
			{Key: "averageRating", Value: bson.D{{Key: "$avg", Value: "$rating"}}},
			{Key: "ratingCount", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cur, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to aggregate ratings: %w", err)
	}

	var rows []struct {
		Average float64 `bson:"averageRating"`
		Count   int64   `bson:"ratingCount"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, 0, fmt.Errorf("failed to decode rating aggregate: %w", err)
	}

	if len(rows) == 0 {
		return 0, 0, nil
	}
	return rows[0].Average, rows[0].Count, nil
}

// RatedGameIDs lists the distinct games a user has rated. Used before a
// user cascade so each affected game can be recomputed afterwards.
func (s *GameListStore) RatedGameIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	filter := bson.D{
		{Key: "userId", Value: userID},
		{Key: "rating", Value: bson.D{
			{Key: "$exists", Value: true},
			{Key: "$ne", Value: nil},
		}},
	}

	vals, err := s.col.Distinct(ctx, "gameId", filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list rated game ids: %w", err)
	}

	ids := make([]primitive.ObjectID, 0, len(vals))
	for _, v := range vals {
		if id, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func pairFilter(userID, gameID primitive.ObjectID) bson.D {
	return bson.D{
		{Key: "userId", Value: userID},
		{Key: "gameId", Value: gameID},
	}
}
