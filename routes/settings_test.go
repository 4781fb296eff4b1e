package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rolinks/database"
)

func newSettingsRouter() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/api/settings/sessions", GetSessions).Methods("GET")
	router.HandleFunc("/api/settings/sessions", DeleteOtherSessions).Methods("DELETE")
	router.HandleFunc("/api/settings/sessions/{sessionId}", DeleteSession).Methods("DELETE")
	router.HandleFunc("/api/settings/delete-account", DeleteAccount).Methods("POST")
	router.HandleFunc("/api/settings/export", ExportData).Methods("POST")
	return router
}

func TestGetSessionsMarksCurrent(t *testing.T) {
	newTestDB(t)
	router := newSettingsRouter()
	user := seedUser(t, "alice")
	current := seedSession(t, user)
	other := seedSession(t, user)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, jsonRequest(t, http.MethodGet, "/api/settings/sessions", nil, current))
	require.Equal(t, http.StatusOK, rec.Code)

	sessions := decodeBody(t, rec)["sessions"].([]interface{})
	require.Len(t, sessions, 2)

	seen := make(map[string]bool, 2)
	for _, s := range sessions {
		entry := s.(map[string]interface{})
		seen[entry["id"].(string)] = entry["isCurrent"].(bool)
	}
	assert.True(t, seen[current.ID])
	assert.False(t, seen[other.ID])
}

func TestGetSessionsUnauthorized(t *testing.T) {
	newTestDB(t)
	router := newSettingsRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, jsonRequest(t, http.MethodGet, "/api/settings/sessions", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDeleteCurrentSessionRejected(t *testing.T) {
	newTestDB(t)
	router := newSettingsRouter()
	user := seedUser(t, "alice")
	current := seedSession(t, user)
	other := seedSession(t, user)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, jsonRequest(t, http.MethodDelete,
		"/api/settings/sessions/"+current.ID, nil, current))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Revoking the other device works and removes exactly that row
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, jsonRequest(t, http.MethodDelete,
		"/api/settings/sessions/"+other.ID, nil, current))
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	require.NoError(t, database.DB.Model(&database.Session{}).
		Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestDeleteForeignSessionReadsAsMissing(t *testing.T) {
	newTestDB(t)
	router := newSettingsRouter()
	alice := seedSession(t, seedUser(t, "alice"))
	bob := seedSession(t, seedUser(t, "bob"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, jsonRequest(t, http.MethodDelete,
		"/api/settings/sessions/"+bob.ID, nil, alice))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Bob's session is untouched
	var count int64
	require.NoError(t, database.DB.Model(&database.Session{}).
		Where("id = ?", bob.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestDeleteOtherSessionsKeepsCurrent(t *testing.T) {
	newTestDB(t)
	router := newSettingsRouter()
	user := seedUser(t, "alice")
	current := seedSession(t, user)
	seedSession(t, user)
	seedSession(t, user)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, jsonRequest(t, http.MethodDelete, "/api/settings/sessions", nil, current))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.EqualValues(t, 1, body["remainingSessions"])

	var remaining []database.Session
	require.NoError(t, database.DB.Where("user_id = ?", user.ID).Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, current.ID, remaining[0].ID)
}

func TestDeleteAccountGuards(t *testing.T) {
	newTestDB(t)
	router := newSettingsRouter()
	session := seedSession(t, seedUser(t, "alice"))

	// Wrong confirmation string
	req := jsonRequest(t, http.MethodPost, "/api/settings/delete-account",
		map[string]string{"confirmation": "delete"}, session)
	req.Header.Set("X-CSRF-Token", "csrf-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Missing CSRF header
	req = jsonRequest(t, http.MethodPost, "/api/settings/delete-account",
		map[string]string{"confirmation": "DELETE"}, session)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Neither attempt deleted anything
	var count int64
	require.NoError(t, database.DB.Model(&database.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestDeleteAccountRemovesUserAndDetachesRows(t *testing.T) {
	newTestDB(t)
	router := newSettingsRouter()
	user := seedUser(t, "alice")
	session := seedSession(t, user)
	seedSession(t, user)
	game := seedGame(t, 1, "Jailbreak", true)
	server := seedServer(t, game, user, session.CreatedAt)

	req := jsonRequest(t, http.MethodPost, "/api/settings/delete-account",
		map[string]string{"confirmation": "DELETE"}, session)
	req.Header.Set("X-CSRF-Token", "csrf-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "Account deletion initiated", body["message"])
	assert.NotEmpty(t, body["deletedAt"])

	var count int64
	require.NoError(t, database.DB.Model(&database.User{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, database.DB.Model(&database.Session{}).Count(&count).Error)
	assert.Zero(t, count)

	// The submitted link survives with its author detached
	var fresh database.Server
	require.NoError(t, database.DB.First(&fresh, server.ID).Error)
	assert.Nil(t, fresh.CreatorID)
}

func TestExportData(t *testing.T) {
	newTestDB(t)
	router := newSettingsRouter()
	user := seedUser(t, "alice")
	session := seedSession(t, user)
	game := seedGame(t, 1, "Jailbreak", true)
	seedServer(t, game, user, session.CreatedAt)
	seedServer(t, game, user, session.CreatedAt)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, jsonRequest(t, http.MethodPost, "/api/settings/export", nil, session))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "rolinks-data-export-")
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decodeBody(t, rec)
	profile := body["profile"].(map[string]interface{})
	assert.Equal(t, "alice", profile["username"])
	assert.Equal(t, "alice@example.com", profile["email"])

	activity := body["activity"].(map[string]interface{})
	assert.EqualValues(t, 2, activity["serversSubmitted"])
	assert.EqualValues(t, 0, activity["gamesRequested"])

	require.Len(t, body["sessions"].([]interface{}), 1)
	assert.NotEmpty(t, body["exportDate"])
}
