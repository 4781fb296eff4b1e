package database

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

// ErrNotFound is returned by lookups that come back empty
var ErrNotFound = errors.New("record not found")

// GameByGameID fetches a game by its external place id regardless of whether
// it is active. Used by the duplicate check on game requests
func GameByGameID(gameID int64) (*Game, error) {
	var game Game
	err := DB.Where("games.game_id = ?", gameID).First(&game).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	return &game, nil
}

// ActiveGameByGameID fetches a game by its external place id, but only if an
// administrator has flipped it active
func ActiveGameByGameID(gameID int64) (*Game, error) {
	var game Game
	err := DB.Where("games.game_id = ? AND games.is_active = ?", gameID, true).First(&game).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	return &game, nil
}

// CountRecentServers counts the servers a user submitted after the given
// cutoff. This is the first half of the check-then-act rate limit on
// submissions; the count and the writes that follow are separate round trips,
// so two concurrent requests can both pass before either lands
func CountRecentServers(userID uint, since time.Time) (int64, error) {
	var count int64
	err := DB.Model(&Server{}).
		Where("servers.creator_id = ? AND servers.created_at > ?", userID, since).
		Count(&count).Error
	return count, err
}

// CountRecentGameRequests counts the inactive games a user requested after
// the given cutoff
func CountRecentGameRequests(userID uint, since time.Time) (int64, error) {
	var count int64
	err := DB.Model(&Game{}).
		Where("games.requested_by_id = ? AND games.is_active = ? AND games.created_at > ?",
			userID, false, since).
		Count(&count).Error
	return count, err
}

// ActiveGames returns every active game with its server count recomputed from
// the servers table. The stored counter is not trusted on the read path; it
// only feeds search ordering
func ActiveGames() ([]Game, error) {
	var games []Game
	err := DB.Where("games.is_active = ?", true).Order("games.name ASC").Find(&games).Error
	if err != nil {
		return nil, err
	}
	for i := range games {
		var count int64
		err = DB.Model(&Server{}).Where("servers.game_id = ?", games[i].ID).Count(&count).Error
		if err != nil {
			return nil, err
		}
		games[i].ServerCount = int(count)
	}
	return games, nil
}

// SearchActiveGames matches the query case-insensitively against active game
// names, most servers first
func SearchActiveGames(query string, limit int) ([]Game, error) {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return []Game{}, nil
	}
	var games []Game
	err := DB.Where("games.is_active = ? AND LOWER(games.name) LIKE ?", true, "%"+query+"%").
		Order("games.server_count DESC").
		Limit(limit).
		Find(&games).Error
	return games, err
}

// TrendingGames returns the top active games by server count, skipping games
// with nothing to offer
func TrendingGames(limit int) ([]Game, error) {
	var games []Game
	err := DB.Where("games.is_active = ? AND games.server_count > ?", true, 0).
		Order("games.server_count DESC").
		Limit(limit).
		Find(&games).Error
	return games, err
}

// ServerPage is one page of servers plus the pagination metadata the UI
// renders. It is a direct passthrough of offset/limit pagination
type ServerPage struct {
	Servers     []Server `json:"docs"`
	Page        int      `json:"page"`
	TotalPages  int      `json:"totalPages"`
	TotalDocs   int64    `json:"totalDocs"`
	HasNextPage bool     `json:"hasNextPage"`
	HasPrevPage bool     `json:"hasPrevPage"`
}

// PageServers fetches one page of servers for an active game identified by
// its external place id, most recently verified first. A missing or inactive
// game yields ErrNotFound rather than leaking rows across games
func PageServers(gameID int64, page, pageSize int) (*ServerPage, error) {
	game, err := ActiveGameByGameID(gameID)
	if err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}

	var total int64
	err = DB.Model(&Server{}).Where("servers.game_id = ?", game.ID).Count(&total).Error
	if err != nil {
		return nil, err
	}

	var servers []Server
	err = DB.Where("servers.game_id = ?", game.ID).
		Order("servers.checked_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&servers).Error
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &ServerPage{
		Servers:     servers,
		Page:        page,
		TotalPages:  totalPages,
		TotalDocs:   total,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}, nil
}

// BumpServerCount adds delta to a game's stored server counter. The add
// endpoint keeps the denormalized column roughly current so search ordering
// stays useful; readers still recount
func BumpServerCount(gameID uint, delta int) error {
	return DB.Model(&Game{}).Where("games.id = ?", gameID).
		UpdateColumn("server_count", gorm.Expr("server_count + ?", delta)).Error
}

// SessionByToken resolves a cookie token to an unexpired session and its user
func SessionByToken(token string) (*Session, error) {
	var session Session
	err := DB.Preload("User").
		Where("sessions.token = ? AND sessions.expires_at > ?", token, time.Now()).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	return &session, nil
}

// SessionsForUser lists a user's sessions, newest first
func SessionsForUser(userID uint) ([]Session, error) {
	var sessions []Session
	err := DB.Where("sessions.user_id = ?", userID).
		Order("sessions.created_at DESC").
		Find(&sessions).Error
	return sessions, err
}

// DeleteSession removes one of a user's sessions by id. Scoping the delete by
// user keeps one user from revoking another's session
func DeleteSession(userID uint, sessionID string) error {
	result := DB.Where("sessions.id = ? AND sessions.user_id = ?", sessionID, userID).
		Delete(&Session{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteOtherSessions removes every session for the user except the current
// one and reports how many went away
func DeleteOtherSessions(userID uint, currentID string) (int64, error) {
	result := DB.Where("sessions.user_id = ? AND sessions.id <> ?", userID, currentID).
		Delete(&Session{})
	return result.RowsAffected, result.Error
}

// DeleteExpiredSessions sweeps sessions whose expiry has passed
func DeleteExpiredSessions() (int64, error) {
	result := DB.Where("sessions.expires_at <= ?", time.Now()).Delete(&Session{})
	return result.RowsAffected, result.Error
}

// DeleteUserAccount removes the user, their sessions, and their authorship
// references in one transaction. Submitted servers and requested games stay
// behind with the creator detached
func DeleteUserAccount(userID uint) error {
	return DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sessions.user_id = ?", userID).Delete(&Session{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&Server{}).Where("servers.creator_id = ?", userID).
			Update("creator_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&Game{}).Where("games.requested_by_id = ?", userID).
			Update("requested_by_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&User{}, userID).Error
	})
}

// CountServersByCreator reports how many servers a user has submitted overall
func CountServersByCreator(userID uint) (int64, error) {
	var count int64
	err := DB.Model(&Server{}).Where("servers.creator_id = ?", userID).Count(&count).Error
	return count, err
}

// CountGamesRequestedBy reports how many game requests a user has filed
func CountGamesRequestedBy(userID uint) (int64, error) {
	var count int64
	err := DB.Model(&Game{}).Where("games.requested_by_id = ?", userID).Count(&count).Error
	return count, err
}
