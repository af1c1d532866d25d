package service

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gamevault/catalog-services/internal/catalogsvc/models"
)

// GameListService owns membership entries and the rating recompute that
// keeps the denormalized summary on each game in step with them.
type GameListService struct {
	lists  GameListStore
	games  GameStore
	events EventPublisher
}

func NewGameListService(lists GameListStore, games GameStore, events EventPublisher) *GameListService {
	return &GameListService{lists: lists, games: games, events: events}
}

// Add creates the entry for a (user, game) pair and recomputes the
// game's rating summary. Callers route to Update when the pair already
// has an entry; if two adds race, the unique index fails the loser with
// a Conflict.
func (s *GameListService) Add(ctx context.Context, userID, gameID primitive.ObjectID, status, review string, rating *float64) (*models.GameListEntry, error) {
	entry := models.GameListEntry{
		UserID: userID,
		GameID: gameID,
		Status: status,
		Review: review,
		Rating: rating,
	}

	created, err := s.lists.Insert(ctx, entry)
	if err != nil {
		return nil, err
	}

	if err := s.RecomputeRating(ctx, gameID); err != nil {
		return nil, err
	}
	return created, nil
}

// Update merges status, review and rating into the existing entry and
// recomputes the game's rating summary.
func (s *GameListService) Update(ctx context.Context, userID, gameID primitive.ObjectID, status, review string, rating *float64) (*models.GameListEntry, error) {
	updated, err := s.lists.Update(ctx, userID, gameID, status, review, rating)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fmt.Errorf("%w: list entry for game %s", ErrNotFound, gameID.Hex())
	}

	if err := s.RecomputeRating(ctx, gameID); err != nil {
		return nil, err
	}
	return updated, nil
}

// Remove deletes the entry for the pair and recomputes the game's
// rating summary. Removing a pair with no entry is a no-op.
func (s *GameListService) Remove(ctx context.Context, userID, gameID primitive.ObjectID) error {
	if err := s.lists.Delete(ctx, userID, gameID); err != nil {
		return err
	}
	return s.RecomputeRating(ctx, gameID)
}

// RemoveAllForGame drops every entry referencing a game. Used before
// deleting the game itself, so no recompute follows.
func (s *GameListService) RemoveAllForGame(ctx context.Context, gameID primitive.ObjectID) error {
	return s.lists.DeleteByGame(ctx, gameID)
}

// RemoveAllForUser drops every entry a user holds, then recomputes each
// game the user had rated, since those summaries just lost a vote.
func (s *GameListService) RemoveAllForUser(ctx context.Context, userID primitive.ObjectID) error {
	rated, err := s.lists.RatedGameIDs(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.lists.DeleteByUser(ctx, userID); err != nil {
		return err
	}

	for _, gameID := range rated {
		if err := s.RecomputeRating(ctx, gameID); err != nil {
			return err
		}
	}
	return nil
}

// RecomputeRating rebuilds a game's rating summary from scratch: the
// mean and count over all of its rated entries, or zeros when none
// remain. It is idempotent and safe against a missing game (the write
// matches zero documents).
func (s *GameListService) RecomputeRating(ctx context.Context, gameID primitive.ObjectID) error {
	avg, count, err := s.lists.AggregateRating(ctx, gameID)
	if err != nil {
		return err
	}
	if count == 0 {
		avg = 0
	}

	if err := s.games.SetRatingSummary(ctx, gameID, avg, count); err != nil {
		return err
	}

	if s.events != nil {
		s.events.RatingUpdated(gameID, avg, count)
	}
	return nil
}

// Exists reports whether the (user, game) pair already has an entry.
// The exists-then-branch flow in the add handler is not atomic; see Add.
func (s *GameListService) Exists(ctx context.Context, userID, gameID primitive.ObjectID) (bool, error) {
	entry, err := s.lists.Get(ctx, userID, gameID)
	if err != nil {
		return false, err
	}
	return entry != nil, nil
}

func (s *GameListService) CountForUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.lists.CountByUser(ctx, userID)
}

// PageForUser returns one page of a user's entries plus the page count,
// in the store's native order.
func (s *GameListService) PageForUser(ctx context.Context, userID primitive.ObjectID, page, records int) ([]models.GameListEntry, int, int64, error) {
	total, err := s.lists.CountByUser(ctx, userID)
	if err != nil {
		return nil, 0, 0, err
	}

	entries, err := s.lists.PageByUser(ctx, userID, page, records)
	if err != nil {
		return nil, 0, 0, err
	}

	return entries, totalPages(total, records), total, nil
}

func (s *GameListService) EntriesForGame(ctx context.Context, gameID primitive.ObjectID) ([]models.GameListEntry, error) {
	return s.lists.FindByGame(ctx, gameID)
}

func (s *GameListService) All(ctx context.Context) ([]models.GameListEntry, error) {
	return s.lists.All(ctx)
}
