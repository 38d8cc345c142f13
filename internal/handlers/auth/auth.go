// handlers/auth/auth.go
package auth

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"

	"github.com/evn/timesheet_backend/internal/models"
	"github.com/evn/timesheet_backend/internal/pkg/response"
	services "github.com/evn/timesheet_backend/internal/services/auth"
)

type AuthHandler struct {
	db         *sql.DB
	jwtService *services.JWTService
}

func NewAuthHandler(db *sql.DB, jwtService *services.JWTService) *AuthHandler {
	return &AuthHandler{
		db:         db,
		jwtService: jwtService,
	}
}

func (h *AuthHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var regData models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&regData); err != nil {
		response.RespondWithError(w, http.StatusBadRequest, "Invalid request data")
		return
	}
	if regData.Username == "" || regData.Password == "" {
		response.RespondWithError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	var count int
	err := h.db.QueryRow("SELECT COUNT(*) FROM users WHERE username = $1", regData.Username).Scan(&count)
	if err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if count > 0 {
		response.RespondWithError(w, http.StatusBadRequest, "Username already exists")
		return
	}

	passwordHash, err := services.HashPassword(regData.Password)
	if err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	_, err = h.db.Exec(`
		INSERT INTO users (username, first_name, password_hash, role, is_active)
		VALUES ($1, $2, $3, 'user', TRUE)`,
		regData.Username,
		regData.FirstName,
		passwordHash,
	)
	if err != nil {
		log.Printf("Failed to create user %s: %v", regData.Username, err)
		response.RespondWithError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	response.RespondWithJSON(w, http.StatusCreated, map[string]string{
		"message": "User registered successfully",
	})
}

func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var loginData models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&loginData); err != nil {
		response.RespondWithError(w, http.StatusBadRequest, "Invalid request data")
		return
	}

	var user models.User
	err := h.db.QueryRow(`
		SELECT id, username, password_hash, role, is_active
		FROM users WHERE username = $1
	`, loginData.Username).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Role, &user.IsActive)
	if err == sql.ErrNoRows {
		response.RespondWithError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !user.IsActive {
		response.RespondWithError(w, http.StatusForbidden, "Account is disabled")
		return
	}
	if !services.CheckPassword(user.PasswordHash, loginData.Password) {
		response.RespondWithError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	accessToken, refreshToken, err := h.jwtService.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		log.Printf("Failed to generate token for %s: %v", user.Username, err)
		response.RespondWithError(w, http.StatusInternalServerError, "Could not generate token")
		return
	}

	response.RespondWithJSON(w, http.StatusOK, models.AuthResponse{
		Token:        accessToken,
		RefreshToken: refreshToken,
		Role:         user.Role,
		UserID:       user.ID,
		Username:     user.Username,
	})
}

func (h *AuthHandler) RefreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	type RequestBody struct {
		RefreshToken string `json:"refresh_token"`
	}

	var body RequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if body.RefreshToken == "" {
		response.RespondWithError(w, http.StatusUnauthorized, "Refresh token required")
		return
	}

	userID, err := h.jwtService.ValidateRefreshToken(body.RefreshToken)
	if err != nil {
		response.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired refresh token")
		return
	}

	var username, role string
	err = h.db.QueryRow("SELECT username, role FROM users WHERE id = $1", userID).Scan(&username, &role)
	if err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "User not found")
		return
	}

	accessToken, refreshToken, err := h.jwtService.GenerateToken(userID, username, role)
	if err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Could not generate token")
		return
	}

	response.RespondWithJSON(w, http.StatusOK, map[string]string{
		"token":         accessToken,
		"refresh_token": refreshToken,
	})
}

func (h *AuthHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	type RequestBody struct {
		RefreshToken string `json:"refresh_token"`
	}

	var body RequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err == nil && body.RefreshToken != "" {
		if err := h.jwtService.RevokeRefreshToken(body.RefreshToken); err != nil {
			log.Printf("Failed to revoke refresh token: %v", err)
		}
	}

	response.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}
