package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gamevault/catalog-services/internal/catalogsvc/models"
	"github.com/gamevault/catalog-services/internal/catalogsvc/service"
)

const gamesCollection = "games"

type GameStore struct {
	col *mongo.Collection
}

func NewGameStore(db *mongo.Database) *GameStore {
	return &GameStore{col: db.Collection(gamesCollection)}
}

func (s *GameStore) Insert(ctx context.Context, game models.Game) (*models.Game, error) {
	now := time.Now().UTC()
	game.CreatedAt = now
	game.UpdatedAt = now

	res, err := s.col.InsertOne(ctx, game)
	if err != nil {
		return nil, fmt.Errorf("failed to insert game: %w", err)
	}

	game.ID = res.InsertedID.(primitive.ObjectID)
	return &game, nil
}

// Update rewrites the identity fields of a game. The rating summary is
// owned by the rating recompute and is never part of the $set.
func (s *GameStore) Update(ctx context.Context, id primitive.ObjectID, upd models.GameUpdate) (*models.Game, error) {
	set := bson.D{
		{Key: "title", Value: upd.Title},
		{Key: "developer", Value: upd.Developer},
		{Key: "publisher", Value: upd.Publisher},
		{Key: "releaseDate", Value: upd.ReleaseDate},
		{Key: "platform", Value: upd.Platform},
		{Key: "description", Value: upd.Description},
		{Key: "longDescription", Value: upd.LongDescription},
		{Key: "genres", Value: upd.Genres},
		{Key: "image", Value: upd.Image},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	game := &models.Game{}
	err := s.col.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: set}},
		opts,
	).Decode(game)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	return game, nil
}

func (s *GameStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.col.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	return nil
}

func (s *GameStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Game, error) {
	game := &models.Game{}
	err := s.col.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(game)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil // game not found
		}
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}
	return game, nil
}

func (s *GameStore) All(ctx context.Context) ([]models.Game, error) {
	cur, err := s.col.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	var games []models.Game
	if err := cur.All(ctx, &games); err != nil {
		return nil, fmt.Errorf("failed to decode games: %w", err)
	}
	return games, nil
}

// FindByTitleAndReleaseDate backs the duplicate-game check. An optional
// excludeID leaves the record being updated out of the match.
func (s *GameStore) FindByTitleAndReleaseDate(ctx context.Context, title string, releaseDate time.Time, excludeID *primitive.ObjectID) ([]models.Game, error) {
	filter := bson.D{
		{Key: "title", Value: title},
		{Key: "releaseDate", Value: releaseDate},
	}
	if excludeID != nil {
		filter = append(filter, bson.E{Key: "_id", Value: bson.D{{Key: "$ne", Value: *excludeID}}})
	}

	cur, err := s.col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find games by title and release date: %w", err)
	}

	var games []models.Game
	if err := cur.All(ctx, &games); err != nil {
		return nil, fmt.Errorf("failed to decode games: %w", err)
	}
	return games, nil
}

func (s *GameStore) FindPage(ctx context.Context, q service.CatalogQuery) ([]models.Game, error) {
	opts := options.Find().
		SetSkip(int64((q.Page - 1) * q.PageSize)).
		SetLimit(int64(q.PageSize))

	if sort := catalogSort(q.Sort); sort != nil {
		opts.SetSort(sort)
	}

	cur, err := s.col.Find(ctx, catalogFilter(q.Filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog page: %w", err)
	}

	var games []models.Game
	if err := cur.All(ctx, &games); err != nil {
		return nil, fmt.Errorf("failed to decode catalog page: %w", err)
	}
	return games, nil
}

func (s *GameStore) Count(ctx context.Context, f service.CatalogFilter) (int64, error) {
	n, err := s.col.CountDocuments(ctx, catalogFilter(f))
	if err != nil {
		return 0, fmt.Errorf("failed to count games: %w", err)
	}
	return n, nil
}

func (s *GameStore) Distinct(ctx context.Context, field string) ([]string, error) {
	vals, err := s.col.Distinct(ctx, field, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to get distinct %s: %w", field, err)
	}

	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// GenreCounts returns the number of catalog games per genre, for the
// chart endpoint.
func (s *GameStore) GenreCounts(ctx context.Context) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$genres"}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$genres"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cur, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate genre counts: %w", err)
	}

	var rows []struct {
		Genre string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode genre counts: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Genre] = r.Count
	}
	return counts, nil
}

// SetRatingSummary writes the recomputed rating summary. A missing game
// matches zero documents and is not an error.
func (s *GameStore) SetRatingSummary(ctx context.Context, gameID primitive.ObjectID, rating float64, count int64) error {
	_, err := s.col.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: gameID}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "rating", Value: rating},
			{Key: "ratingCount", Value: count},
			{Key: "updatedAt", Value: time.Now().UTC()},
		}}},
	)
	if err != nil {
		return fmt.Errorf("failed to set rating summary: %w", err)
	}
	return nil
}

// catalogFilter builds the Mongo filter for a catalog query. Genres use
// $in over the game's genre list; the rating range is inclusive.
func catalogFilter(f service.CatalogFilter) bson.D {
	filter := bson.D{}

	if len(f.Genres) > 0 {
		filter = append(filter, bson.E{Key: "genres", Value: bson.D{{Key: "$in", Value: f.Genres}}})
	}

	if f.RatingRange != "" {
		min, max := ratingBounds(f.RatingRange)
		filter = append(filter, bson.E{Key: "rating", Value: bson.D{
			{Key: "$gte", Value: min},
			{Key: "$lte", Value: max},
		}})
	}

	return filter
}

// ratingBounds splits a "min-max" range. Syntax is validated upstream.
func ratingBounds(r string) (float64, float64) {
	parts := strings.SplitN(r, "-", 2)
	min, _ := strconv.ParseFloat(parts[0], 64)
	max := min
	if len(parts) == 2 {
		max, _ = strconv.ParseFloat(parts[1], 64)
	}
	return min, max
}

// catalogSort maps a client sort key to a Mongo sort document. Unknown
// keys and "not-sorted" leave the store's native order.
func catalogSort(key string) bson.D {
	switch key {
	case service.SortTitleAsc:
		return bson.D{{Key: "title", Value: 1}}
	case service.SortTitleDesc:
		return bson.D{{Key: "title", Value: -1}}
	case service.SortReleaseAsc:
		return bson.D{{Key: "releaseDate", Value: 1}}
	case service.SortReleaseDesc:
		return bson.D{{Key: "releaseDate", Value: -1}}
	case service.SortRatingAsc:
		return bson.D{{Key: "rating", Value: 1}}
	case service.SortRatingDesc:
		return bson.D{{Key: "rating", Value: -1}}
	default:
		return nil
	}
}
