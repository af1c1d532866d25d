package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gamevault/catalog-services/internal/catalogsvc/models"
)

type credentialsPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type sessionData struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var p credentialsPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	if p.Username == "" || p.Email == "" || p.Password == "" || p.Role == "" {
		h.badRequest(w, "Parameters missing")
		return
	}
	if !models.ValidRole(p.Role) {
		h.badRequest(w, "Role must be one of admin, manager, basic")
		return
	}

	now := time.Now().UTC()
	user, err := h.users.Register(r.Context(), p.Username, p.Email, p.Password, p.Role, &now)
	if err != nil {
		h.writeError(w, err)
		return
	}

	token, err := h.issueToken(user.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.CreateResponse(w, Response{Code: http.StatusCreated, Data: sessionData{User: user, Token: token}})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var p credentialsPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	if p.Email == "" || p.Password == "" {
		h.badRequest(w, "Parameters missing")
		return
	}

	user, err := h.users.Authenticate(r.Context(), p.Email, p.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}

	token, err := h.issueToken(user.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.CreateResponse(w, Response{Code: http.StatusCreated, Data: sessionData{User: user, Token: token}})
}

// Logout exists for client symmetry; sessions are stateless tokens the
// client discards.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.CreateResponse(w, Response{Code: http.StatusOK, Message: "logged out"})
}

func (h *Handler) GetAuthenticatedUser(w http.ResponseWriter, r *http.Request) {
	userID, err := h.authUserID(r)
	if err != nil {
		h.CreateResponse(w, Response{Code: http.StatusUnauthorized, Error: "not authenticated"})
		return
	}

	user, err := h.users.Get(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.CreateResponse(w, Response{Code: http.StatusOK, Data: user})
}

// AddAccount creates an account without opening a session, for the
// admin surface.
func (h *Handler) AddAccount(w http.ResponseWriter, r *http.Request) {
	var p credentialsPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	if p.Username == "" || p.Email == "" || p.Password == "" || p.Role == "" {
		h.badRequest(w, "Parameters missing")
		return
	}
	if !models.ValidRole(p.Role) {
		h.badRequest(w, "Role must be one of admin, manager, basic")
		return
	}

	user, err := h.users.Register(r.Context(), p.Username, p.Email, p.Password, p.Role, nil)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.CreateResponse(w, Response{Code: http.StatusCreated, Data: user})
}

// DeleteAccount removes a user. The user's list entries are cascaded
// first, which also recomputes the rating summary of every game the
// user had rated.
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.badRequest(w, "Invalid user id")
		return
	}

	if err := h.lists.RemoveAllForUser(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.users.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type usersPage struct {
	CurrentRecords []models.User `json:"currentRecords"`
	TotalPages     int           `json:"totalPages"`
}

func (h *Handler) GetUsersPaginated(w http.ResponseWriter, r *http.Request) {
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

	users, pages, err := h.users.Page(r.Context(), page, records)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if users == nil {
		users = []models.User{}
	}
	h.CreateResponse(w, Response{Code: http.StatusOK, Data: usersPage{
		CurrentRecords: users,
		TotalPages:     pages,
	}})
}
