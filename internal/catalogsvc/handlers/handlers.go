package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/jwtauth"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gamevault/catalog-services/internal/catalogsvc/service"
)

type Handler struct {
	tokenAuth *jwtauth.JWTAuth
	games     *service.GameService
	lists     *service.GameListService
	users     *service.UserService
}

func NewHandler(games *service.GameService, lists *service.GameListService, users *service.UserService) *Handler {
	return &Handler{
		games: games,
		lists: lists,
		users: users,
	}
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error,omitempty"`
}

func (h *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)

	json.NewEncoder(w).Encode(rsp)
}

// writeError maps service error kinds to HTTP statuses. Kinds are
// matched with errors.Is, never by message text.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		code = http.StatusConflict
	case errors.Is(err, service.ErrInvalidInput):
		code = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		code = http.StatusUnauthorized
	}

	h.CreateResponse(w, Response{Code: code, Error: err.Error()})
}

func (h *Handler) badRequest(w http.ResponseWriter, msg string) {
	h.CreateResponse(w, Response{Code: http.StatusBadRequest, Error: msg})
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	h.CreateResponse(w, Response{
		Message: "catalog service is running at port " + os.Getenv("CATALOG_SERVICE_PORT"),
		Code:    http.StatusOK,
	})
}

func (h *Handler) InitAuth() {
	jwtKey := os.Getenv("JWT_SECRET_KEY")
	h.tokenAuth = jwtauth.New("HS256", []byte(jwtKey), nil)
}

// issueToken builds the session token carried by authenticated clients.
func (h *Handler) issueToken(userID primitive.ObjectID) (string, error) {
	expirationTime := time.Now().Add(24 * time.Hour).Unix()

	_, tokenString, err := h.tokenAuth.Encode(map[string]interface{}{
		"user_id": userID.Hex(),
		"exp":     expirationTime,
	})
	return tokenString, err
}

// authUserID extracts the authenticated user id from the JWT claims.
// A missing or malformed claim fails closed.
func (h *Handler) authUserID(r *http.Request) (primitive.ObjectID, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return primitive.NilObjectID, err
	}

	raw, ok := claims["user_id"].(string)
	if !ok {
		return primitive.NilObjectID, errors.New("user_id claim missing")
	}

	return primitive.ObjectIDFromHex(raw)
}
