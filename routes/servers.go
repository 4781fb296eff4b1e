package routes

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"rolinks/database"
	"rolinks/utils"
)

// ServerInput is one candidate link in a submission batch
type ServerInput struct {
	Link string `json:"link"`
}

// AddServerRequest is the submission payload
type AddServerRequest struct {
	GameID  int64         `json:"gameId"`
	Servers []ServerInput `json:"servers"`
}

// CreatedServer echoes the persisted row for a successful item
type CreatedServer struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Link string `json:"link"`
}

// ServerResult is the per-item outcome. Failed items carry the input back so
// the client can show what was rejected
type ServerResult struct {
	Success bool           `json:"success"`
	Server  *CreatedServer `json:"server,omitempty"`
	Error   string         `json:"error,omitempty"`
	Input   *ServerInput   `json:"input,omitempty"`
}

// AddServerSummary totals the per-item outcomes
type AddServerSummary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// GameSummary is the resolved game's public identity
type GameSummary struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	GameID int64  `json:"gameid"`
}

// AddServerResponse is the full submission response
type AddServerResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Results []ServerResult   `json:"results"`
	Summary AddServerSummary `json:"summary"`
	Game    GameSummary      `json:"game"`
}

// AddServers accepts a batch of private-server links for an active game.
// The guards run in order before anything is written: session, body shape,
// batch cap, game lookup, then the windowed rate limit. The limiter rejects
// the whole batch when admitting it would cross the ceiling, so the cap
// cannot be dodged by stuffing one request. Past the guards, items fail
// individually without aborting the rest of the batch
func AddServers(w http.ResponseWriter, r *http.Request) {
	session := utils.CurrentSession(r)
	if session == nil {
		utils.ErrorJSON(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var body AddServerRequest
	if err := utils.FromJSON(r, &body); err != nil || body.GameID == 0 || body.Servers == nil {
		utils.ErrorJSON(w, http.StatusBadRequest, "gameId and servers array are required")
		return
	}

	if len(body.Servers) > Cfg.MaxServersPerRequest {
		utils.ErrorJSON(w, http.StatusBadRequest,
			fmt.Sprintf("Maximum %d servers allowed per request", Cfg.MaxServersPerRequest))
		return
	}

	game, err := database.ActiveGameByGameID(body.GameID)
	if errors.Is(err, database.ErrNotFound) {
		utils.ErrorJSON(w, http.StatusNotFound, "Game not found or not active")
		return
	} else if err != nil {
		internalError(w, r, err)
		return
	}

	since := time.Now().Add(-Cfg.ServerRateWindow)
	recent, err := database.CountRecentServers(session.UserID, since)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if int(recent)+len(body.Servers) > Cfg.MaxServersPerWindow {
		utils.WriteJSON(w, http.StatusTooManyRequests, map[string]interface{}{
			"error": fmt.Sprintf("Rate limit exceeded. Maximum %d servers per %s.",
				Cfg.MaxServersPerWindow, windowText(Cfg.ServerRateWindow)),
			"retryAfter": int(Cfg.ServerRateWindow.Seconds()),
		})
		return
	}

	results := make([]ServerResult, 0, len(body.Servers))
	successCount := 0
	for i := range body.Servers {
		input := body.Servers[i]
		if input.Link == "" {
			results = append(results, ServerResult{
				Success: false,
				Error:   "Link is required",
				Input:   &input,
			})
			continue
		}

		server := database.Server{
			Name:      utils.GenerateName(),
			Link:      input.Link,
			GameID:    game.ID,
			CreatorID: &session.UserID,
			CheckedAt: time.Now(),
		}
		if err = database.DB.Create(&server).Error; err != nil {
			results = append(results, ServerResult{
				Success: false,
				Error:   "Failed to create server in database",
				Input:   &input,
			})
			continue
		}

		successCount++
		results = append(results, ServerResult{
			Success: true,
			Server: &CreatedServer{
				ID:   server.ID,
				Name: server.Name,
				Link: server.Link,
			},
		})
	}

	// Keep the denormalized counter roughly current for search ordering.
	// The listing path recounts and does not trust this column
	if successCount > 0 {
		if err = database.BumpServerCount(game.ID, successCount); err != nil {
			internalError(w, r, err)
			return
		}
	}

	failureCount := len(results) - successCount
	utils.WriteJSON(w, http.StatusOK, AddServerResponse{
		Success: true,
		Message: fmt.Sprintf("%d server(s) added successfully, %d failed", successCount, failureCount),
		Results: results,
		Summary: AddServerSummary{
			Total:      len(results),
			Successful: successCount,
			Failed:     failureCount,
		},
		Game: GameSummary{
			ID:     game.ID,
			Name:   game.Name,
			GameID: game.GameID,
		},
	})
}
