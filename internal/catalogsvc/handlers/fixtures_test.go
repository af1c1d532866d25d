package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gamevault/catalog-services/internal/catalogsvc/models"
	"github.com/gamevault/catalog-services/internal/catalogsvc/service"
)

// In-memory stores backing the handler tests, mirroring the Mongo store
// contracts: nil for missing records, Conflict on duplicate inserts.

type memGameStore struct {
	games []*models.Game
}

func (s *memGameStore) Insert(_ context.Context, game models.Game) (*models.Game, error) {
	game.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	game.CreatedAt = now
	game.UpdatedAt = now
	c := game
	s.games = append(s.games, &c)
	out := c
	return &out, nil
}

func (s *memGameStore) Update(_ context.Context, id primitive.ObjectID, upd models.GameUpdate) (*models.Game, error) {
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

func (s *memGameStore) Delete(_ context.Context, id primitive.ObjectID) error {
	kept := s.games[:0]
	for _, g := range s.games {
		if g.ID != id {
			kept = append(kept, g)
		}
	}
	s.games = kept
	return nil
}

func (s *memGameStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.Game, error) {
	for _, g := range s.games {
		if g.ID == id {
			c := *g
			return &c, nil
		}
	}
	return nil, nil
}

func (s *memGameStore) All(_ context.Context) ([]models.Game, error) {
	out := make([]models.Game, 0, len(s.games))
	for _, g := range s.games {
		out = append(out, *g)
	}
	return out, nil
}

func (s *memGameStore) FindByTitleAndReleaseDate(_ context.Context, title string, releaseDate time.Time, excludeID *primitive.ObjectID) ([]models.Game, error) {
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

func (s *memGameStore) FindPage(_ context.Context, q service.CatalogQuery) ([]models.Game, error) {
	matched := s.filtered(q.Filter)

	switch q.Sort {
	case service.SortTitleAsc:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Title < matched[j].Title })
	case service.SortTitleDesc:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Title > matched[j].Title })
	case service.SortReleaseAsc:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].ReleaseDate.Before(matched[j].ReleaseDate) })
	case service.SortReleaseDesc:
		sort.SliceStable(matched, func(i, j int) bool { return matched[j].ReleaseDate.Before(matched[i].ReleaseDate) })
	case service.SortRatingAsc:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Rating < matched[j].Rating })
	case service.SortRatingDesc:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Rating > matched[j].Rating })
	}

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

func (s *memGameStore) Count(_ context.Context, f service.CatalogFilter) (int64, error) {
	return int64(len(s.filtered(f))), nil
}

func (s *memGameStore) Distinct(_ context.Context, field string) ([]string, error) {
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

func (s *memGameStore) GenreCounts(_ context.Context) (map[string]int64, error) {
	counts := map[string]int64{}
	for _, g := range s.games {
		for _, genre := range g.Genres {
			counts[genre]++
		}
	}
	return counts, nil
}

func (s *memGameStore) SetRatingSummary(_ context.Context, gameID primitive.ObjectID, rating float64, count int64) error {
	for _, g := range s.games {
		if g.ID == gameID {
			g.Rating = rating
			g.RatingCount = count
		}
	}
	return nil
}

func (s *memGameStore) filtered(f service.CatalogFilter) []*models.Game {
	var out []*models.Game
	for _, g := range s.games {
		if len(f.Genres) > 0 && !anyGenre(g.Genres, f.Genres) {
			continue
		}
		if f.RatingRange != "" {
			parts := strings.SplitN(f.RatingRange, "-", 2)
			min, _ := strconv.ParseFloat(parts[0], 64)
			max := min
			if len(parts) == 2 {
				max, _ = strconv.ParseFloat(parts[1], 64)
			}
			if g.Rating < min || g.Rating > max {
				continue
			}
		}
		out = append(out, g)
	}
	return out
}

func anyGenre(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if w == h {
				return true
			}
		}
	}
	return false
}

type memListStore struct {
	entries []*models.GameListEntry
}

func (s *memListStore) Insert(_ context.Context, entry models.GameListEntry) (*models.GameListEntry, error) {
	for _, e := range s.entries {
		if e.UserID == entry.UserID && e.GameID == entry.GameID {
			return nil, fmt.Errorf("%w: list entry for this user and game", service.ErrConflict)
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

func (s *memListStore) Update(_ context.Context, userID, gameID primitive.ObjectID, status, review string, rating *float64) (*models.GameListEntry, error) {
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

func (s *memListStore) Delete(_ context.Context, userID, gameID primitive.ObjectID) error {
	kept := s.entries[:0]
	for _, e := range s.entries {
		if !(e.UserID == userID && e.GameID == gameID) {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	return nil
}

func (s *memListStore) DeleteByGame(_ context.Context, gameID primitive.ObjectID) error {
	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.GameID != gameID {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	return nil
}

func (s *memListStore) DeleteByUser(_ context.Context, userID primitive.ObjectID) error {
	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.UserID != userID {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	return nil
}

func (s *memListStore) Get(_ context.Context, userID, gameID primitive.ObjectID) (*models.GameListEntry, error) {
	for _, e := range s.entries {
		if e.UserID == userID && e.GameID == gameID {
			c := *e
			return &c, nil
		}
	}
	return nil, nil
}

func (s *memListStore) FindByGame(_ context.Context, gameID primitive.ObjectID) ([]models.GameListEntry, error) {
	var out []models.GameListEntry
	for _, e := range s.entries {
		if e.GameID == gameID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (s *memListStore) All(_ context.Context) ([]models.GameListEntry, error) {
	out := make([]models.GameListEntry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, *e)
	}
	return out, nil
}

func (s *memListStore) CountByUser(_ context.Context, userID primitive.ObjectID) (int64, error) {
	var n int64
	for _, e := range s.entries {
		if e.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (s *memListStore) PageByUser(_ context.Context, userID primitive.ObjectID, page, records int) ([]models.GameListEntry, error) {
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

func (s *memListStore) AggregateRating(_ context.Context, gameID primitive.ObjectID) (float64, int64, error) {
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

func (s *memListStore) RatedGameIDs(_ context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
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

type memUserStore struct {
	users []*models.User
}

func (s *memUserStore) Insert(_ context.Context, user models.User) (*models.User, error) {
	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	c := user
	s.users = append(s.users, &c)
	out := c
	return &out, nil
}

func (s *memUserStore) Delete(_ context.Context, id primitive.ObjectID) error {
	kept := s.users[:0]
	for _, u := range s.users {
		if u.ID != id {
			kept = append(kept, u)
		}
	}
	s.users = kept
	return nil
}

func (s *memUserStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (s *memUserStore) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (s *memUserStore) UpdateLastLogin(_ context.Context, id primitive.ObjectID, at time.Time) error {
	for _, u := range s.users {
		if u.ID == id {
			t := at
			u.LastLogin = &t
		}
	}
	return nil
}

func (s *memUserStore) Count(_ context.Context) (int64, error) {
	return int64(len(s.users)), nil
}

func (s *memUserStore) Page(_ context.Context, page, records int) ([]models.User, error) {
	skip := (page - 1) * records
	if skip >= len(s.users) || skip < 0 {
		return nil, nil
	}
	end := skip + records
	if end > len(s.users) {
		end = len(s.users)
	}
	out := make([]models.User, 0, end-skip)
	for _, u := range s.users[skip:end] {
		out = append(out, *u)
	}
	return out, nil
}

// testEnv wires the handlers onto in-memory stores behind a live
// httptest server.
type testEnv struct {
	handler *Handler
	server  *httptest.Server
	games   *memGameStore
	lists   *memListStore
	users   *memUserStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("JWT_SECRET_KEY", "test-secret")

	games := &memGameStore{}
	lists := &memListStore{}
	users := &memUserStore{}

	h := NewHandler(
		service.NewGameService(games, nil),
		service.NewGameListService(lists, games, nil),
		service.NewUserService(users),
	)
	h.InitAuth()

	r := chi.NewRouter()
	h.SetRoutes(r)

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)

	return &testEnv{handler: h, server: ts, games: games, lists: lists, users: users}
}

func (e *testEnv) seedGame(t *testing.T, title string, rating float64) *models.Game {
	t.Helper()
	g, err := e.games.Insert(context.Background(), models.Game{
		Title:       title,
		Developer:   "Studio",
		Publisher:   "Publisher",
		ReleaseDate: time.Date(2015, 3, 1, 0, 0, 0, 0, time.UTC),
		Platform:    []string{"PC"},
		Genres:      []string{"Action"},
		Rating:      rating,
	})
	require.NoError(t, err)
	return g
}

func (e *testEnv) token(t *testing.T, userID primitive.ObjectID) string {
	t.Helper()
	token, err := e.handler.issueToken(userID)
	require.NoError(t, err)
	return token
}

// do sends a JSON request, optionally authenticated, and returns the
// response with its decoded body.
func (e *testEnv) do(t *testing.T, method, path, token string, payload interface{}) (*http.Response, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, e.server.URL+path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rsp, err := e.server.Client().Do(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(rsp.Body)
	require.NoError(t, err)
	rsp.Body.Close()

	return rsp, raw
}

func validGamePayload(title string) map[string]interface{} {
	return map[string]interface{}{
		"title":           title,
		"developer":       "Studio",
		"publisher":       "Publisher",
		"releaseDate":     "2015-03-01",
		"platform":        []string{"PC"},
		"description":     "Short description.",
		"longDescription": "A longer description of the game.",
		"genres":          []string{"Action"},
	}
}
