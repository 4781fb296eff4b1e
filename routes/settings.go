package routes

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"rolinks/database"
	"rolinks/utils"
)

// SessionSummary is what the settings page shows per device
type SessionSummary struct {
	ID        string    `json:"id"`
	UserID    uint      `json:"userId"`
	UserAgent string    `json:"userAgent"`
	IPAddress string    `json:"ipAddress"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	IsCurrent bool      `json:"isCurrent"`
}

func summarize(sessions []database.Session, currentID string) []SessionSummary {
	summaries := make([]SessionSummary, 0, len(sessions))
	for _, s := range sessions {
		summaries = append(summaries, SessionSummary{
			ID:        s.ID,
			UserID:    s.UserID,
			UserAgent: s.UserAgent,
			IPAddress: s.IPAddress,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
			IsCurrent: s.ID == currentID,
		})
	}
	return summaries
}

// GetSessions lists the caller's sessions, newest first
func GetSessions(w http.ResponseWriter, r *http.Request) {
	session := utils.CurrentSession(r)
	if session == nil {
		utils.ErrorJSON(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	sessions, err := database.SessionsForUser(session.UserID)
	if err != nil {
		internalError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": summarize(sessions, session.ID),
	})
}

// DeleteOtherSessions signs the user out everywhere except this device
func DeleteOtherSessions(w http.ResponseWriter, r *http.Request) {
	session := utils.CurrentSession(r)
	if session == nil {
		utils.ErrorJSON(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if _, err := database.DeleteOtherSessions(session.UserID, session.ID); err != nil {
		internalError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":           "All other sessions removed successfully",
		"remainingSessions": 1,
	})
}

// DeleteSession revokes one session by id. The current session cannot revoke
// itself, and ids belonging to other users read as not found
func DeleteSession(w http.ResponseWriter, r *http.Request) {
	session := utils.CurrentSession(r)
	if session == nil {
		utils.ErrorJSON(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	sessionID := mux.Vars(r)["sessionId"]
	if sessionID == session.ID {
		utils.ErrorJSON(w, http.StatusBadRequest, "Cannot delete current session")
		return
	}

	err := database.DeleteSession(session.UserID, sessionID)
	if errors.Is(err, database.ErrNotFound) {
		utils.ErrorJSON(w, http.StatusNotFound, "Session not found")
		return
	} else if err != nil {
		internalError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Session deleted successfully",
	})
}

// DeleteAccount removes the user after an explicit confirmation. The typed
// confirmation guards against accidental calls; the CSRF header guards
// against forged ones
func DeleteAccount(w http.ResponseWriter, r *http.Request) {
	session := utils.CurrentSession(r)
	if session == nil {
		utils.ErrorJSON(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var body struct {
		Confirmation string `json:"confirmation"`
	}
	if err := utils.FromJSON(r, &body); err != nil || body.Confirmation != "DELETE" {
		utils.ErrorJSON(w, http.StatusBadRequest, "Invalid confirmation")
		return
	}

	if r.Header.Get("X-CSRF-Token") == "" {
		utils.ErrorJSON(w, http.StatusForbidden, "CSRF token required")
		return
	}

	if err := database.DeleteUserAccount(session.UserID); err != nil {
		internalError(w, r, err)
		return
	}

	setSessionCookie(w, "", time.Unix(0, 0))
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Account deletion initiated",
		"deletedAt": time.Now().UTC().Format(time.RFC3339),
	})
}

// ExportData hands the user a JSON snapshot of everything stored about them
func ExportData(w http.ResponseWriter, r *http.Request) {
	session := utils.CurrentSession(r)
	if session == nil {
		utils.ErrorJSON(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	user := session.User

	sessions, err := database.SessionsForUser(session.UserID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	serversSubmitted, err := database.CountServersByCreator(session.UserID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	gamesRequested, err := database.CountGamesRequestedBy(session.UserID)
	if err != nil {
		internalError(w, r, err)
		return
	}

	export := map[string]interface{}{
		"profile": map[string]interface{}{
			"id":        user.ID,
			"username":  user.Username,
			"email":     user.Email,
			"createdAt": user.CreatedAt,
			"updatedAt": user.UpdatedAt,
		},
		"sessions": summarize(sessions, session.ID),
		"activity": map[string]interface{}{
			"serversSubmitted": serversSubmitted,
			"gamesRequested":   gamesRequested,
			"accountCreated":   user.CreatedAt,
		},
		"exportDate": time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q",
			"rolinks-data-export-"+time.Now().UTC().Format("2006-01-02")+".json"))
	utils.WriteJSON(w, http.StatusOK, export)
}
