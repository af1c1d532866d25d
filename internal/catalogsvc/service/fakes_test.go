package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gamevault/catalog-services/internal/catalogsvc/models"
)

// In-memory stand-ins for the Mongo stores, mirroring their contracts:
// nil results for missing records, Conflict for duplicate inserts, the
// catalog filter/sort semantics applied over a slice.

type fakeGameStore struct {
	games []*models.Game
}

func newFakeGameStore(games ...models.Game) *fakeGameStore {
	s := &fakeGameStore{}
	for _, g := range games {
		c := g
		if c.ID.IsZero() {
			c.ID = primitive.NewObjectID()
		}
		s.games = append(s.games, &c)
	}
	return s
}

func (s *fakeGameStore) Insert(_ context.Context, game models.Game) (*models.Game, error) {
	game.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	game.CreatedAt = now
	game.UpdatedAt = now
	c := game
	s.games = append(s.games, &c)
	out := c
	return &out, nil
}

func (s *fakeGameStore) Update(_ context.Context, id primitive.ObjectID, upd models.GameUpdate) (*models.Game, error) {
	for _, g := range s.games {
		if g.ID == id {
			g.Title = upd.Title
			g.Developer = upd.Developer
			g.Publisher = upd.Publisher
			g.ReleaseDate = upd.ReleaseDate
			g.Platform = upd.Platform
			g.Description = upd.Description
			g.LongDescription = upd.LongDescription
			g.Genres = upd.Genres
			g.Image = upd.Image
			c := *g
			return &c, nil
		}
	}
	return nil, nil
}

func (s *fakeGameStore) Delete(_ context.Context, id primitive.ObjectID) error {
	kept := s.games[:0]
	for _, g := range s.games {
		if g.ID != id {
			kept = append(kept, g)
		}
	}
	s.games = kept
	return nil
}

func (s *fakeGameStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.Game, error) {
	for _, g := range s.games {
		if g.ID == id {
			c := *g
			return &c, nil
		}
	}
	return nil, nil
}

func (s *fakeGameStore) All(_ context.Context) ([]models.Game, error) {
	out := make([]models.Game, 0, len(s.games))
	for _, g := range s.games {
		out = append(out, *g)
	}
	return out, nil
}

func (s *fakeGameStore) FindByTitleAndReleaseDate(_ context.Context, title string, releaseDate time.Time, excludeID *primitive.ObjectID) ([]models.Game, error) {
	var out []models.Game
	for _, g := range s.games {
		if excludeID != nil && g.ID == *excludeID {
			continue
		}
		if g.Title == title && g.ReleaseDate.Equal(releaseDate) {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (s *fakeGameStore) FindPage(_ context.Context, q CatalogQuery) ([]models.Game, error) {
	matched := s.filtered(q.Filter)
	sortGames(matched, q.Sort)

	skip := (q.Page - 1) * q.PageSize
	if skip >= len(matched) || skip < 0 {
		return nil, nil
	}
	end := skip + q.PageSize
	if end > len(matched) {
		end = len(matched)
	}

	out := make([]models.Game, 0, end-skip)
	for _, g := range matched[skip:end] {
		out = append(out, *g)
	}
	return out, nil
}

func (s *fakeGameStore) Count(_ context.Context, f CatalogFilter) (int64, error) {
	return int64(len(s.filtered(f))), nil
}

func (s *fakeGameStore) Distinct(_ context.Context, field string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, g := range s.games {
		v := g.Publisher
		if field == "developer" {
			v = g.Developer
		}
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *fakeGameStore) GenreCounts(_ context.Context) (map[string]int64, error) {
	counts := map[string]int64{}
	for _, g := range s.games {
		for _, genre := range g.Genres {
			counts[genre]++
		}
	}
	return counts, nil
}

func (s *fakeGameStore) SetRatingSummary(_ context.Context, gameID primitive.ObjectID, rating float64, count int64) error {
	for _, g := range s.games {
		if g.ID == gameID {
			g.Rating = rating
			g.RatingCount = count
			return nil
		}
	}
	return nil // zero-match write, same as the real store
}

func (s *fakeGameStore) filtered(f CatalogFilter) []*models.Game {
	var out []*models.Game
	for _, g := range s.games {
		if len(f.Genres) > 0 && !genresIntersect(g.Genres, f.Genres) {
			continue
		}
		if f.RatingRange != "" {
			min, max := parseRange(f.RatingRange)
			if g.Rating < min || g.Rating > max {
				continue
			}
		}
		out = append(out, g)
	}
	return out
}

func genresIntersect(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if w == h {
				return true
			}
		}
	}
	return false
}

func parseRange(r string) (float64, float64) {
	parts := strings.SplitN(r, "-", 2)
	min, _ := strconv.ParseFloat(parts[0], 64)
	max := min
	if len(parts) == 2 {
		max, _ = strconv.ParseFloat(parts[1], 64)
	}
	return min, max
}

func sortGames(gs []*models.Game, key string) {
	switch key {
	case SortTitleAsc:
		sort.SliceStable(gs, func(i, j int) bool { return gs[i].Title < gs[j].Title })
	case SortTitleDesc:
		sort.SliceStable(gs, func(i, j int) bool { return gs[i].Title > gs[j].Title })
	case SortReleaseAsc:
		sort.SliceStable(gs, func(i, j int) bool { return gs[i].ReleaseDate.Before(gs[j].ReleaseDate) })
	case SortReleaseDesc:
		sort.SliceStable(gs, func(i, j int) bool { return gs[j].ReleaseDate.Before(gs[i].ReleaseDate) })
	case SortRatingAsc:
		sort.SliceStable(gs, func(i, j int) bool { return gs[i].Rating < gs[j].Rating })
	case SortRatingDesc:
		sort.SliceStable(gs, func(i, j int) bool { return gs[i].Rating > gs[j].Rating })
	}
}

type fakeListStore struct {
	entries []*models.GameListEntry
}

func newFakeListStore() *fakeListStore {
	return &fakeListStore{}
}

func (s *fakeListStore) Insert(_ context.Context, entry models.GameListEntry) (*models.GameListEntry, error) {
	for _, e := range s.entries {
		if e.UserID == entry.UserID && e.GameID == entry.GameID {
			// unique (userId, gameId) index
			return nil, fmt.Errorf("%w: list entry for this user and game", ErrConflict)
		}
	}
	entry.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	c := entry
	s.entries = append(s.entries, &c)
	out := c
	return &out, nil
}

func (s *fakeListStore) Update(_ context.Context, userID, gameID primitive.ObjectID, status, review string, rating *float64) (*models.GameListEntry, error) {
	for _, e := range s.entries {
		if e.UserID == userID && e.GameID == gameID {
			e.Status = status
			if review != "" {
				e.Review = review
			}
			if rating != nil {
				v := *rating
				e.Rating = &v
			}
			c := *e
			return &c, nil
		}
	}
	return nil, nil
}

func (s *fakeListStore) Delete(_ context.Context, userID, gameID primitive.ObjectID) error {
	kept := s.entries[:0]
	for _, e := range s.entries {
		if !(e.UserID == userID && e.GameID == gameID) {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	return nil
}

func (s *fakeListStore) DeleteByGame(_ context.Context, gameID primitive.ObjectID) error {
	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.GameID != gameID {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	return nil
}

func (s *fakeListStore) DeleteByUser(_ context.Context, userID primitive.ObjectID) error {
	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.UserID != userID {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	return nil
}

func (s *fakeListStore) Get(_ context.Context, userID, gameID primitive.ObjectID) (*models.GameListEntry, error) {
	for _, e := range s.entries {
		if e.UserID == userID && e.GameID == gameID {
			c := *e
			return &c, nil
		}
	}
	return nil, nil
}

func (s *fakeListStore) FindByGame(_ context.Context, gameID primitive.ObjectID) ([]models.GameListEntry, error) {
	var out []models.GameListEntry
	for _, e := range s.entries {
		if e.GameID == gameID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (s *fakeListStore) All(_ context.Context) ([]models.GameListEntry, error) {
	out := make([]models.GameListEntry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, *e)
	}
	return out, nil
}

func (s *fakeListStore) CountByUser(_ context.Context, userID primitive.ObjectID) (int64, error) {
	var n int64
	for _, e := range s.entries {
		if e.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (s *fakeListStore) PageByUser(_ context.Context, userID primitive.ObjectID, page, records int) ([]models.GameListEntry, error) {
	var mine []*models.GameListEntry
	for _, e := range s.entries {
		if e.UserID == userID {
			mine = append(mine, e)
		}
	}

	skip := (page - 1) * records
	if skip >= len(mine) || skip < 0 {
		return nil, nil
	}
	end := skip + records
	if end > len(mine) {
		end = len(mine)
	}

	out := make([]models.GameListEntry, 0, end-skip)
	for _, e := range mine[skip:end] {
		out = append(out, *e)
	}
	return out, nil
}

func (s *fakeListStore) AggregateRating(_ context.Context, gameID primitive.ObjectID) (float64, int64, error) {
	var sum float64
	var count int64
	for _, e := range s.entries {
		if e.GameID == gameID && e.Rating != nil {
			sum += *e.Rating
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return sum / float64(count), count, nil
}

func (s *fakeListStore) RatedGameIDs(_ context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	seen := map[primitive.ObjectID]bool{}
	var out []primitive.ObjectID
	for _, e := range s.entries {
		if e.UserID == userID && e.Rating != nil && !seen[e.GameID] {
			seen[e.GameID] = true
			out = append(out, e.GameID)
		}
	}
	return out, nil
}

// recordingEvents captures published events for assertions.
type recordingEvents struct {
	ratingUpdates []RatingEvent
	created       int
	deleted       int
	updated       int
}

type RatingEvent struct {
	GameID primitive.ObjectID
	Rating float64
	Count  int64
}

func (r *recordingEvents) GameCreated(*models.Game)             { r.created++ }
func (r *recordingEvents) GameUpdated(*models.Game)             { r.updated++ }
func (r *recordingEvents) GameDeleted(primitive.ObjectID)       { r.deleted++ }
func (r *recordingEvents) RatingUpdated(gameID primitive.ObjectID, rating float64, count int64) {
	r.ratingUpdates = append(r.ratingUpdates, RatingEvent{GameID: gameID, Rating: rating, Count: count})
}

func ratingPtr(v float64) *float64 { return &v }
