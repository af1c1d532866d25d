package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gamevault/catalog-services/internal/catalogsvc/models"
	"github.com/gamevault/catalog-services/internal/catalogsvc/service"
)

// earliest accepted release date: the day Tennis for Two was shown
var earliestReleaseDate = time.Date(1958, time.October, 18, 0, 0, 0, 0, time.UTC)

type gamePayload struct {
	Title           string   `json:"title"`
	Developer       string   `json:"developer"`
	Publisher       string   `json:"publisher"`
	ReleaseDate     string   `json:"releaseDate"`
	Platform        []string `json:"platform"`
	Description     string   `json:"description"`
	LongDescription string   `json:"longDescription"`
	Genres          []string `json:"genres"`
	Image           string   `json:"image"`
}

// validate checks the catalog mutation contract and returns the parsed
// release date.
func (p *gamePayload) validate() (time.Time, string) {
	if p.Title == "" {
		return time.Time{}, "Title is required."
	}
	if len(p.Title) < 3 {
		return time.Time{}, "Title must be a string of at least 3 characters."
	}
	if p.Developer == "" {
		return time.Time{}, "Developer is required."
	}
	if p.Publisher == "" {
		return time.Time{}, "Publisher is required."
	}
	if p.ReleaseDate == "" {
		return time.Time{}, "Release date is required."
	}

	date, err := parseReleaseDate(p.ReleaseDate)
	if err != nil {
		return time.Time{}, "Release date is not a valid date."
	}
	if date.Before(earliestReleaseDate) || date.After(time.Now()) {
		return time.Time{}, "Release date must be between October 18, 1958 and today."
	}

	if !models.ValidPlatforms(p.Platform) {
		return time.Time{}, "At least one valid platform is required."
	}
	if p.Description == "" {
		return time.Time{}, "Description is required."
	}
	if len(p.Description) > 220 {
		return time.Time{}, "Description must be of maximum 220 characters."
	}
	if p.LongDescription == "" {
		return time.Time{}, "Long description is required."
	}
	if !models.ValidGenres(p.Genres) {
		return time.Time{}, "Genres must be between 1 and 6 values from the genre list."
	}

	return date, ""
}

func parseReleaseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	return t.UTC(), err
}

func (h *Handler) GetAllGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.games.All(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.CreateResponse(w, Response{Code: http.StatusOK, Data: games})
}

type catalogPage struct {
	CurrentRecords []models.Game `json:"currentRecords"`
	TotalPages     int           `json:"totalPages"`
	TotalGames     int64         `json:"totalGames"`
}

func (h *Handler) GetGamesPaginatedAndFiltered(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil {
		h.badRequest(w, "page must be an integer")
		return
	}
	records, err := strconv.Atoi(chi.URLParam(r, "records"))
	if err != nil {
		h.badRequest(w, "records must be an integer")
		return
	}

	var genres []string
	if raw := r.URL.Query().Get("genres"); raw != "" {
		genres = strings.Split(raw, ",")
	}

	q := service.CatalogQuery{
		Filter: service.CatalogFilter{
			Genres:      genres,
			RatingRange: r.URL.Query().Get("rating"),
		},
		Sort:     chi.URLParam(r, "sortOption"),
		Page:     page,
		PageSize: records,
	}

	games, pages, total, err := h.games.Page(r.Context(), q)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if games == nil {
		games = []models.Game{}
	}
	h.CreateResponse(w, Response{Code: http.StatusOK, Data: catalogPage{
		CurrentRecords: games,
		TotalPages:     pages,
		TotalGames:     total,
	}})
}

func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.badRequest(w, "Invalid game id")
		return
	}

	game, err := h.games.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.CreateResponse(w, Response{Code: http.StatusOK, Data: game})
}

func (h *Handler) AddGame(w http.ResponseWriter, r *http.Request) {
	var p gamePayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}

	date, msg := p.validate()
	if msg != "" {
		h.badRequest(w, msg)
		return
	}

	if p.Image == "" {
		p.Image = models.PlaceholderImage
	}

	game, err := h.games.Add(r.Context(), models.Game{
		Title:           p.Title,
		Developer:       p.Developer,
		Publisher:       p.Publisher,
		ReleaseDate:     date,
		Platform:        p.Platform,
		Description:     p.Description,
		LongDescription: p.LongDescription,
		Genres:          p.Genres,
		Image:           p.Image,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.CreateResponse(w, Response{Code: http.StatusCreated, Data: game})
}

func (h *Handler) UpdateGame(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.badRequest(w, "Invalid game id")
		return
	}

	var p gamePayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}

	date, msg := p.validate()
	if msg != "" {
		h.badRequest(w, msg)
		return
	}

	game, err := h.games.Update(r.Context(), id, models.GameUpdate{
		Title:           p.Title,
		Developer:       p.Developer,
		Publisher:       p.Publisher,
		ReleaseDate:     date,
		Platform:        p.Platform,
		Description:     p.Description,
		LongDescription: p.LongDescription,
		Genres:          p.Genres,
		Image:           p.Image,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.CreateResponse(w, Response{Code: http.StatusOK, Data: game})
}

// DeleteGame removes a game from the catalog. List entries referencing
// the game are cascaded first, so a crash in between leaves only a
// game with no entries.
func (h *Handler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.badRequest(w, "Invalid game id")
		return
	}

	if err := h.lists.RemoveAllForGame(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.games.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetGenres(w http.ResponseWriter, r *http.Request) {
	h.CreateResponse(w, Response{Code: http.StatusOK, Data: models.Genres})
}

func (h *Handler) GetPlatforms(w http.ResponseWriter, r *http.Request) {
	h.CreateResponse(w, Response{Code: http.StatusOK, Data: models.Platforms})
}

func (h *Handler) GetPublishers(w http.ResponseWriter, r *http.Request) {
	publishers, err := h.games.Publishers(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.CreateResponse(w, Response{Code: http.StatusOK, Data: publishers})
}

func (h *Handler) GetDevelopers(w http.ResponseWriter, r *http.Request) {
	developers, err := h.games.Developers(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.CreateResponse(w, Response{Code: http.StatusOK, Data: developers})
}

func (h *Handler) GetChart(w http.ResponseWriter, r *http.Request) {
	counts, err := h.games.ChartData(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.CreateResponse(w, Response{Code: http.StatusOK, Data: counts})
}
