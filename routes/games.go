package routes

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"rolinks/database"
	"rolinks/utils"
)

// RequestGameRequest asks for a new game to be added to the directory
type RequestGameRequest struct {
	GameID int64 `json:"gameId"`
}

// RequestGameResponse confirms a filed request
type RequestGameResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	GameID  int64  `json:"gameId"`
}

// RequestGame files a placeholder game for administrator review. Guards:
// session, well-formed positive id, duplicate check (with distinct messages
// for active and pending games), then the per-user windowed rate limit. The
// row is created inactive; the Roblox metadata backfill afterwards is best
// effort and a failure leaves the placeholder name in place
func RequestGame(w http.ResponseWriter, r *http.Request) {
	session := utils.CurrentSession(r)
	if session == nil {
		utils.ErrorJSON(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var body RequestGameRequest
	if err := utils.FromJSON(r, &body); err != nil || body.GameID <= 0 {
		utils.ErrorJSON(w, http.StatusBadRequest, "Valid gameId is required")
		return
	}

	existing, err := database.GameByGameID(body.GameID)
	if err == nil {
		message := "This game already exists but is currently inactive"
		if existing.IsActive {
			message = "This game already exists and is active"
		}
		utils.WriteJSON(w, http.StatusConflict, map[string]interface{}{
			"success": false,
			"message": message,
			"gameId":  body.GameID,
			"error":   "Game already exists",
		})
		return
	} else if !errors.Is(err, database.ErrNotFound) {
		internalError(w, r, err)
		return
	}

	since := time.Now().Add(-Cfg.GameRateWindow)
	recent, err := database.CountRecentGameRequests(session.UserID, since)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if recent >= int64(Cfg.MaxGameRequestsPerWindow) {
		utils.WriteJSON(w, http.StatusTooManyRequests, map[string]interface{}{
			"success":    false,
			"message":    "Rate limit exceeded. Too many game requests recently. Please try again later.",
			"error":      "Rate limit exceeded",
			"gameId":     body.GameID,
			"retryAfter": int(Cfg.GameRateWindow.Seconds()),
		})
		return
	}

	game := database.Game{
		// Placeholder until the metadata lookup lands
		Name:          fmt.Sprintf("Game %d", body.GameID),
		GameID:        body.GameID,
		Robux:         0,
		IsActive:      false,
		RequestedByID: &session.UserID,
	}
	if err = database.DB.Create(&game).Error; err != nil {
		slog.Error("create game", "gameId", body.GameID, "error", err)
		utils.WriteJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"message": "Failed to add game",
			"error":   "Database error",
			"gameId":  body.GameID,
		})
		return
	}

	if Roblox != nil {
		details, err := Roblox.PlaceDetails(r.Context(), body.GameID)
		if err != nil {
			slog.Warn("roblox metadata lookup failed", "gameId", body.GameID, "error", err)
		} else {
			err = database.DB.Model(&game).Updates(map[string]interface{}{
				"name":      details.Name,
				"image_url": details.ImageURL,
			}).Error
			if err != nil {
				slog.Warn("backfill game metadata", "gameId", body.GameID, "error", err)
			}
		}
	}

	utils.WriteJSON(w, http.StatusOK, RequestGameResponse{
		Success: true,
		Message: "Game added successfully! It will be reviewed by administrators before becoming active.",
		GameID:  body.GameID,
	})
}

// GetGames lists every active game with recomputed server counts. Results
// are cached whole; a submission landing between refreshes is invisible
// until the TTL rolls over
func GetGames(w http.ResponseWriter, r *http.Request) {
	games, err := gamesCache.Do("games", func() (interface{}, error) {
		return database.ActiveGames()
	})
	if err != nil {
		internalError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"docs": games})
}

// GetGame fetches one active game by its external id
func GetGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := strconv.ParseInt(mux.Vars(r)["gameId"], 10, 64)
	if err != nil || gameID <= 0 {
		utils.ErrorJSON(w, http.StatusBadRequest, "Valid gameId is required")
		return
	}

	game, err := database.ActiveGameByGameID(gameID)
	if errors.Is(err, database.ErrNotFound) {
		utils.ErrorJSON(w, http.StatusNotFound, "Game not found or not active")
		return
	} else if err != nil {
		internalError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, game)
}

// GetGameServers returns one page of a game's servers, most recently
// verified first, with the pagination metadata passed straight through
func GetGameServers(w http.ResponseWriter, r *http.Request) {
	gameID, err := strconv.ParseInt(mux.Vars(r)["gameId"], 10, 64)
	if err != nil || gameID <= 0 {
		utils.ErrorJSON(w, http.StatusBadRequest, "Valid gameId is required")
		return
	}

	page := 1
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}

	serverPage, err := database.PageServers(gameID, page, Cfg.PageSize)
	if errors.Is(err, database.ErrNotFound) {
		utils.ErrorJSON(w, http.StatusNotFound, "Game not found or not active")
		return
	} else if err != nil {
		internalError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, serverPage)
}

// SearchGames matches active game names case-insensitively, most servers
// first, capped to a small result size. Results are cached per query
func SearchGames(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"docs": []database.Game{}})
		return
	}

	key := strings.ToLower(query)
	games, err := searchCache.Do(key, func() (interface{}, error) {
		return database.SearchActiveGames(query, Cfg.SearchLimit)
	})
	if err != nil {
		internalError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"docs": games})
}

// GetTrendingGames returns the most-stocked active games for the search
// dropdown. Cached on a long TTL since the ranking moves slowly
func GetTrendingGames(w http.ResponseWriter, r *http.Request) {
	games, err := trendingCache.Do("trending", func() (interface{}, error) {
		return database.TrendingGames(Cfg.TrendingLimit)
	})
	if err != nil {
		internalError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"docs": games})
}
