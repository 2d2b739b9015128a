package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const tokenLifetime = 8 * time.Hour

type AuthHandler struct {
	users  UserStore
	secret []byte
}

func NewAuthHandler(users UserStore, secret []byte) *AuthHandler {
	return &AuthHandler{users: users, secret: secret}
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Login checks credentials against the user store and returns a signed JWT.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "username and password required")
		return
	}

	user, err := h.users.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		log.Printf("login lookup: %v", err)
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"role":     user.Role,
		"exp":      time.Now().Add(tokenLifetime).Unix(),
	})
	signed, err := token.SignedString(h.secret)
	if err != nil {
		log.Printf("sign token: %v", err)
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	if err := h.users.TouchLastLogin(r.Context(), user.Username); err != nil {
		// Login still succeeds; the timestamp is informational.
		log.Printf("touch last login: %v", err)
	}

	respondJSON(w, http.StatusOK, LoginResponse{
		Token:    signed,
		Username: user.Username,
		Role:     user.Role,
	})
}
