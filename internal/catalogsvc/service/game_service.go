package service

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gamevault/catalog-services/internal/catalogsvc/models"
)

// GameService is the catalog side: CRUD on games plus the filtered,
// sorted, paginated catalog view.
type GameService struct {
	games  GameStore
	events EventPublisher
}

func NewGameService(games GameStore, events EventPublisher) *GameService {
	return &GameService{games: games, events: events}
}

// Exists reports whether a game with the same title and release date is
// already in the catalog, optionally ignoring one id (the record being
// updated).
func (s *GameService) Exists(ctx context.Context, title string, releaseDate time.Time, excludeID *primitive.ObjectID) (bool, error) {
	games, err := s.games.FindByTitleAndReleaseDate(ctx, title, releaseDate, excludeID)
	if err != nil {
		return false, err
	}
	return len(games) > 0, nil
}

// Add creates a catalog entry. The rating summary always starts at zero
// regardless of what the caller supplies.
func (s *GameService) Add(ctx context.Context, game models.Game) (*models.Game, error) {
	exists, err := s.Exists(ctx, game.Title, game.ReleaseDate, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: game with this title and release date", ErrConflict)
	}

	game.Rating = 0
	game.RatingCount = 0

	created, err := s.games.Insert(ctx, game)
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.GameCreated(created)
	}
	return created, nil
}

// Update rewrites a game's identity fields. The rating summary is never
// touched here.
func (s *GameService) Update(ctx context.Context, id primitive.ObjectID, upd models.GameUpdate) (*models.Game, error) {
	exists, err := s.Exists(ctx, upd.Title, upd.ReleaseDate, &id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: game with this title and release date", ErrConflict)
	}

	updated, err := s.games.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fmt.Errorf("%w: game %s", ErrNotFound, id.Hex())
	}

	if s.events != nil {
		s.events.GameUpdated(updated)
	}
	return updated, nil
}

// Delete removes a game from the catalog. The caller is responsible for
// cascading the game's list entries first.
func (s *GameService) Delete(ctx context.Context, id primitive.ObjectID) error {
	game, err := s.games.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if game == nil {
		return fmt.Errorf("%w: game %s", ErrNotFound, id.Hex())
	}

	if err := s.games.Delete(ctx, id); err != nil {
		return err
	}

	if s.events != nil {
		s.events.GameDeleted(id)
	}
	return nil
}

func (s *GameService) Get(ctx context.Context, id primitive.ObjectID) (*models.Game, error) {
	game, err := s.games.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, fmt.Errorf("%w: game %s", ErrNotFound, id.Hex())
	}
	return game, nil
}

func (s *GameService) All(ctx context.Context) ([]models.Game, error) {
	return s.games.All(ctx)
}

// Page returns one filtered, sorted catalog page plus the page count
// and filtered total. The count and the fetch are two separate reads
// with no snapshot between them; a concurrent writer can skew them
// slightly, which is accepted.
func (s *GameService) Page(ctx context.Context, q CatalogQuery) ([]models.Game, int, int64, error) {
	total, err := s.games.Count(ctx, q.Filter)
	if err != nil {
		return nil, 0, 0, err
	}

	games, err := s.games.FindPage(ctx, q)
	if err != nil {
		return nil, 0, 0, err
	}

	return games, totalPages(total, q.PageSize), total, nil
}

func (s *GameService) Publishers(ctx context.Context) ([]string, error) {
	return s.games.Distinct(ctx, "publisher")
}

func (s *GameService) Developers(ctx context.Context) ([]string, error) {
	return s.games.Distinct(ctx, "developer")
}

func (s *GameService) ChartData(ctx context.Context) (map[string]int64, error) {
	return s.games.GenreCounts(ctx)
}
