package routes

import (
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"rolinks/database"
	"rolinks/utils"
)

// clientIP strips the port off RemoteAddr for session bookkeeping
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// setSessionCookie installs the token cookie the auth gate looks for
func setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Path:     "/",
		Name:     "token",
		Value:    token,
		Expires:  expires,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// Login handler. A successful login creates a fresh session row for this
// device; sessions on other devices are left alone
func Login(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	passwd := r.FormValue("password")

	var user database.User
	err := database.DB.Where("users.username = ?", username).First(&user).Error
	if err != nil || bcrypt.CompareHashAndPassword(user.Password, []byte(passwd)) != nil {
		utils.ErrorJSON(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, expires := utils.GenerateToken(Cfg.SessionTTL)
	session := database.Session{
		ID:        uuid.NewString(),
		Token:     token,
		UserID:    user.ID,
		UserAgent: r.UserAgent(),
		IPAddress: clientIP(r),
		ExpiresAt: expires,
	}
	if err = database.DB.Create(&session).Error; err != nil {
		internalError(w, r, err)
		return
	}

	setSessionCookie(w, token, expires)
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Logged in",
	})
}

// Register handler. Accounts only exist to attribute submissions and hold
// sessions, so this stays minimal
func Register(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	email := r.FormValue("email")
	passwd := r.FormValue("password")

	if username == "" || email == "" || len(passwd) < 8 {
		utils.ErrorJSON(w, http.StatusBadRequest,
			"username, email, and a password of at least 8 characters are required")
		return
	}

	var count int64
	err := database.DB.Model(&database.User{}).
		Where("users.username = ? OR users.email = ?", username, email).
		Count(&count).Error
	if err != nil {
		internalError(w, r, err)
		return
	}
	if count > 0 {
		utils.ErrorJSON(w, http.StatusConflict, "Username or email already taken")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(passwd), bcrypt.DefaultCost)
	if err != nil {
		internalError(w, r, err)
		return
	}

	user := database.User{
		Username: username,
		Email:    email,
		Password: hash,
	}
	if err = database.DB.Create(&user).Error; err != nil {
		internalError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Account created",
	})
}

// Logout deletes the current session and clears the cookie
func Logout(w http.ResponseWriter, r *http.Request) {
	session := utils.CurrentSession(r)
	if session == nil {
		utils.ErrorJSON(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := database.DeleteSession(session.UserID, session.ID); err != nil {
		internalError(w, r, err)
		return
	}

	setSessionCookie(w, "", time.Unix(0, 0))
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Logged out",
	})
}
