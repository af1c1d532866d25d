package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gamevault/catalog-services/internal/catalogsvc/models"
)

type listEntryPayload struct {
	Status string   `json:"status"`
	Review string   `json:"review"`
	Rating *float64 `json:"rating"`
}

type listPage struct {
	CurrentRecords []models.GameListEntry `json:"currentRecords"`
	TotalPages     int                    `json:"totalPages"`
	TotalGames     int64                  `json:"totalGames"`
}

func (h *Handler) GetListCount(w http.ResponseWriter, r *http.Request) {
	userID, err := h.authUserID(r)
	if err != nil {
		h.CreateResponse(w, Response{Code: http.StatusUnauthorized, Error: "not authenticated"})
		return
	}

	count, err := h.lists.CountForUser(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.CreateResponse(w, Response{Code: http.StatusOK, Data: count})
}

// AddGameToList either creates the entry for the authenticated user and
// the game, or routes to update semantics when the pair already has
// one. The check and the write are two store operations; a concurrent
// double add resolves as a conflict at the unique index.
func (h *Handler) AddGameToList(w http.ResponseWriter, r *http.Request) {
	userID, err := h.authUserID(r)
	if err != nil {
		h.CreateResponse(w, Response{Code: http.StatusUnauthorized, Error: "not authenticated"})
		return
	}

	gameID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.badRequest(w, "Invalid game id")
		return
	}

	var p listEntryPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	if !models.ValidListStatus(p.Status) {
		h.badRequest(w, "Status must be one of the list statuses")
		return
	}

	exists, err := h.lists.Exists(r.Context(), userID, gameID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var entry *models.GameListEntry
	if exists {
		entry, err = h.lists.Update(r.Context(), userID, gameID, p.Status, p.Review, p.Rating)
	} else {
		entry, err = h.lists.Add(r.Context(), userID, gameID, p.Status, p.Review, p.Rating)
	}
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.CreateResponse(w, Response{Code: http.StatusOK, Data: entry})
}

func (h *Handler) UpdateGameFromList(w http.ResponseWriter, r *http.Request) {
	userID, err := h.authUserID(r)
	if err != nil {
		h.CreateResponse(w, Response{Code: http.StatusUnauthorized, Error: "not authenticated"})
		return
	}

	gameID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.badRequest(w, "Invalid game id")
		return
	}

	var p listEntryPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	if !models.ValidListStatus(p.Status) {
		h.badRequest(w, "Status must be one of the list statuses")
		return
	}

	entry, err := h.lists.Update(r.Context(), userID, gameID, p.Status, p.Review, p.Rating)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.CreateResponse(w, Response{Code: http.StatusOK, Data: entry})
}

func (h *Handler) DeleteGameFromList(w http.ResponseWriter, r *http.Request) {
	userID, err := h.authUserID(r)
	if err != nil {
		h.CreateResponse(w, Response{Code: http.StatusUnauthorized, Error: "not authenticated"})
		return
	}

	gameID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.badRequest(w, "Invalid game id")
		return
	}

	if err := h.lists.Remove(r.Context(), userID, gameID); err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteGameOfUser removes another user's entry, for the admin surface.
func (h *Handler) DeleteGameOfUser(w http.ResponseWriter, r *http.Request) {
	userID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userId"))
	if err != nil {
		h.badRequest(w, "Invalid user id")
		return
	}
	gameID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "gameId"))
	if err != nil {
		h.badRequest(w, "Invalid game id")
		return
	}

	if err := h.lists.Remove(r.Context(), userID, gameID); err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetListPaginated(w http.ResponseWriter, r *http.Request) {
	userID, err := h.authUserID(r)
	if err != nil {
		h.CreateResponse(w, Response{Code: http.StatusUnauthorized, Error: "not authenticated"})
		return
	}

	h.writeListPage(w, r, userID)
}

func (h *Handler) GetListForUserPaginated(w http.ResponseWriter, r *http.Request) {
	userID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.badRequest(w, "Invalid user id")
		return
	}

	h.writeListPage(w, r, userID)
}

func (h *Handler) writeListPage(w http.ResponseWriter, r *http.Request, userID primitive.ObjectID) {
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

	entries, pages, total, err := h.lists.PageForUser(r.Context(), userID, page, records)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if entries == nil {
		entries = []models.GameListEntry{}
	}
	h.CreateResponse(w, Response{Code: http.StatusOK, Data: listPage{
		CurrentRecords: entries,
		TotalPages:     pages,
		TotalGames:     total,
	}})
}

// GetEntriesByGame lists every entry referencing one game.
func (h *Handler) GetEntriesByGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.badRequest(w, "Invalid game id")
		return
	}

	entries, err := h.lists.EntriesForGame(r.Context(), gameID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.CreateResponse(w, Response{Code: http.StatusOK, Data: entries})
}
