package routes

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"rolinks/config"
	"rolinks/database"
	"rolinks/utils"
)

var testJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// newTestDB swaps the global connection for an in-memory sqlite database and
// resets the handler state to the stock configuration
func newTestDB(t *testing.T) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&database.User{},
		&database.Session{},
		&database.Game{},
		&database.Server{},
	))
	database.DB = db
	Setup(config.Default(), nil)
}

func seedUser(t *testing.T, username string) *database.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	user := database.User{
		Username: username,
		Email:    username + "@example.com",
		Password: hash,
	}
	require.NoError(t, database.DB.Create(&user).Error)
	return &user
}

func seedSession(t *testing.T, user *database.User) *database.Session {
	t.Helper()
	token, expires := utils.GenerateToken(time.Hour)
	session := database.Session{
		ID:        uuid.NewString(),
		Token:     token,
		UserID:    user.ID,
		UserAgent: "test-agent",
		IPAddress: "127.0.0.1",
		ExpiresAt: expires,
	}
	require.NoError(t, database.DB.Create(&session).Error)
	return &session
}

func seedGame(t *testing.T, gameID int64, name string, active bool) *database.Game {
	t.Helper()
	game := database.Game{
		Name:     name,
		GameID:   gameID,
		IsActive: active,
	}
	require.NoError(t, database.DB.Create(&game).Error)
	return &game
}

func seedServer(t *testing.T, game *database.Game, creator *database.User, createdAt time.Time) *database.Server {
	t.Helper()
	server := database.Server{
		Name:      utils.GenerateName(),
		Link:      "https://www.roblox.com/share?code=" + uuid.NewString(),
		GameID:    game.ID,
		CheckedAt: createdAt,
	}
	if creator != nil {
		server.CreatorID = &creator.ID
	}
	require.NoError(t, database.DB.Create(&server).Error)
	// CreatedAt drives the rate-limit window, so pin it explicitly
	require.NoError(t, database.DB.Model(&server).UpdateColumn("created_at", createdAt).Error)
	return &server
}

// jsonRequest builds a request with an optional JSON body and session cookie
func jsonRequest(t *testing.T, method, target string, body interface{}, session *database.Session) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, testJSON.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if session != nil {
		req.AddCookie(&http.Cookie{Name: "token", Value: session.Token})
	}
	return req
}

// decodeBody unpacks a recorded JSON response into a generic map
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	body := make(map[string]interface{})
	require.NoError(t, testJSON.Unmarshal(rec.Body.Bytes(), &body))
	return body
}
