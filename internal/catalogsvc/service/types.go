package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gamevault/catalog-services/internal/catalogsvc/models"
)

// Catalog sort keys, as the client sends them.
const (
	SortTitleAsc    = "alphabetically-increase"
	SortTitleDesc   = "alphabetically-decrease"
	SortReleaseAsc  = "release-date-increase"
	SortReleaseDesc = "release-date-decrease"
	SortRatingAsc   = "rating-increase"
	SortRatingDesc  = "rating-decrease"
	SortNone        = "not-sorted"
)

// CatalogFilter narrows a catalog query. Genres use intersection
// semantics (a game matches when it carries any requested genre).
// RatingRange is a "min-max" string, inclusive on both ends; syntax is
// the caller's responsibility.
type CatalogFilter struct {
	Genres      []string
	RatingRange string
}

// CatalogQuery is one page request against the catalog.
type CatalogQuery struct {
	Filter   CatalogFilter
	Sort     string
	Page     int
	PageSize int
}

// GameStore is the catalog collection as the services see it.
type GameStore interface {
	Insert(ctx context.Context, game models.Game) (*models.Game, error)
	Update(ctx context.Context, id primitive.ObjectID, upd models.GameUpdate) (*models.Game, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Game, error)
	All(ctx context.Context) ([]models.Game, error)
	FindByTitleAndReleaseDate(ctx context.Context, title string, releaseDate time.Time, excludeID *primitive.ObjectID) ([]models.Game, error)
	FindPage(ctx context.Context, q CatalogQuery) ([]models.Game, error)
	Count(ctx context.Context, f CatalogFilter) (int64, error)
	Distinct(ctx context.Context, field string) ([]string, error)
	GenreCounts(ctx context.Context) (map[string]int64, error)
	SetRatingSummary(ctx context.Context, gameID primitive.ObjectID, rating float64, count int64) error
}

// GameListStore is the membership collection as the services see it.
type GameListStore interface {
	Insert(ctx context.Context, entry models.GameListEntry) (*models.GameListEntry, error)
	Update(ctx context.Context, userID, gameID primitive.ObjectID, status, review string, rating *float64) (*models.GameListEntry, error)
	Delete(ctx context.Context, userID, gameID primitive.ObjectID) error
	DeleteByGame(ctx context.Context, gameID primitive.ObjectID) error
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) error
	Get(ctx context.Context, userID, gameID primitive.ObjectID) (*models.GameListEntry, error)
	FindByGame(ctx context.Context, gameID primitive.ObjectID) ([]models.GameListEntry, error)
	All(ctx context.Context) ([]models.GameListEntry, error)
	CountByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
	PageByUser(ctx context.Context, userID primitive.ObjectID, page, records int) ([]models.GameListEntry, error)
	AggregateRating(ctx context.Context, gameID primitive.ObjectID) (avg float64, count int64, err error)
	RatedGameIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
}

// UserStore is the accounts collection as the services see it.
type UserStore interface {
	Insert(ctx context.Context, user models.User) (*models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error
	Count(ctx context.Context) (int64, error)
	Page(ctx context.Context, page, records int) ([]models.User, error)
}

// EventPublisher receives catalog change notifications. Publishing is
// best-effort and never fails a request.
type EventPublisher interface {
	GameCreated(game *models.Game)
	GameUpdated(game *models.Game)
	GameDeleted(gameID primitive.ObjectID)
	RatingUpdated(gameID primitive.ObjectID, rating float64, count int64)
}

// totalPages is ceil(total/records) with a guard for degenerate sizes.
func totalPages(total int64, records int) int {
	if records <= 0 {
		records = 1
	}
	return (int(total) + records - 1) / records
}
