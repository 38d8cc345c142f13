// handlers/admin/users.go
package admin

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/evn/timesheet_backend/internal/pkg/response"
)

// ListUsersHandler возвращает список всех пользователей для админов
func ListUsersHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := db.Query(`
			SELECT id, username, first_name, role, is_active, created_at
			FROM users
			ORDER BY created_at DESC
		`)
		if err != nil {
			log.Printf("Database query error: %v", err)
			response.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch users")
			return
		}
		defer rows.Close()

		var users []map[string]interface{}
		for rows.Next() {
			var (
				id        int
				username  string
				firstName sql.NullString
				role      string
				isActive  bool
				createdAt time.Time
			)
			if err := rows.Scan(&id, &username, &firstName, &role, &isActive, &createdAt); err != nil {
				log.Printf("Error scanning user row: %v", err)
				response.RespondWithError(w, http.StatusInternalServerError, "Failed to read user data")
				return
			}
			users = append(users, map[string]interface{}{
				"id":         id,
				"username":   username,
				"first_name": firstName.String,
				"role":       role,
				"is_active":  isActive,
				"created_at": createdAt.Format(time.RFC3339),
			})
		}
		if err = rows.Err(); err != nil {
			log.Printf("Row iteration error: %v", err)
			response.RespondWithError(w, http.StatusInternalServerError, "Data read error")
			return
		}

		response.RespondWithJSON(w, http.StatusOK, users)
	}
}

// UpdateUserRoleHandler меняет роль пользователя.
func UpdateUserRoleHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.Atoi(chi.URLParam(r, "userID"))
		if err != nil {
			response.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
			return
		}

		var body struct {
			Role string `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			response.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		switch body.Role {
		case "user", "admin", "superadmin":
		default:
			response.RespondWithError(w, http.StatusBadRequest, "Invalid role: "+body.Role)
			return
		}

		res, err := db.Exec(`UPDATE users SET role = $1 WHERE id = $2`, body.Role, userID)
		if err != nil {
			log.Printf("Failed to update role for user %d: %v", userID, err)
			response.RespondWithError(w, http.StatusInternalServerError, "Database error")
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			response.RespondWithError(w, http.StatusNotFound, "User not found")
			return
		}

		response.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "updated"})
	}
}

// UpdateUserStatusHandler включает или отключает учётную запись.
func UpdateUserStatusHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.Atoi(chi.URLParam(r, "userID"))
		if err != nil {
			response.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
			return
		}

		var body struct {
			IsActive *bool `json:"is_active"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.IsActive == nil {
			response.RespondWithError(w, http.StatusBadRequest, "is_active is required")
			return
		}

		res, err := db.Exec(`UPDATE users SET is_active = $1 WHERE id = $2`, *body.IsActive, userID)
		if err != nil {
			log.Printf("Failed to update status for user %d: %v", userID, err)
			response.RespondWithError(w, http.StatusInternalServerError, "Database error")
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			response.RespondWithError(w, http.StatusNotFound, "User not found")
			return
		}

		response.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "updated"})
	}
}
