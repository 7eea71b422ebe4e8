package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"taskmanager/backend/models"
	"taskmanager/backend/services"
)

var validate = validator.New()

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Token    string `json:"token"`
}

func Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	user := services.Authenticate(req.Username, req.Password)
	if user == nil {
		// Never reveal which of the two was wrong.
		slog.Warn("login failed", "source", "auth", "username", req.Username)
		respondError(w, http.StatusUnauthorized, "Username or password is incorrect")
		return
	}

	slog.Info("user logged in", "source", "auth", "user_id", user.ID, "username", user.Username)
	issueToken(w, user)
}

func Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "Username, email and password are required")
		return
	}

	user := services.Register(req.Username, req.Email, req.Password)
	if user == nil {
		respondError(w, http.StatusBadRequest, "Username or email is already taken")
		return
	}

	slog.Info("user registered", "source", "auth", "user_id", user.ID, "username", user.Username)
	issueToken(w, user)
}

func issueToken(w http.ResponseWriter, user *models.User) {
	token, err := services.GenerateToken(user)
	if err != nil {
		slog.Error("token generation failed", "source", "auth", "error", err.Error())
		respondError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	respondJSON(w, http.StatusOK, AuthResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
		Token:    token,
	})
}
