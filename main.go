package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"rolinks/config"
	"rolinks/database"
	"rolinks/roblox"
	"rolinks/routes"
)

// cfg is loaded once in main and read-only afterwards
var cfg = config.Default()

func main() {
	cfg = config.Load(os.Getenv("CONFIG_FILE"))
	setupLogger(cfg.LogLevel)

	// Make DB connection
	err := database.ConnectDB("postgres")
	if err != nil {
		panic("failed to connect database")
	}

	// Create all the tables with constraints if they don't already exist
	database.MakeDB()

	routes.Setup(cfg, roblox.NewClient(cfg.RobloxTimeout))

	// Sweep expired sessions periodically so dead rows don't pile up
	go func() {
		ticker := time.NewTicker(time.Hour)
		for range ticker.C {
			n, err := database.DeleteExpiredSessions()
			if err != nil {
				slog.Error("sweep expired sessions", "error", err)
			} else if n > 0 {
				slog.Info("swept expired sessions", "count", n)
			}
		}
	}()

	// Create new base router for app
	router := mux.NewRouter()

	// Handlers

	// Handle logins and account creation
	router.HandleFunc("/login", routes.Login).Methods("POST")
	router.HandleFunc("/register", routes.Register).Methods("POST")
	router.HandleFunc("/logout", routes.Logout).Methods("POST")

	// Handle API calls
	api := router.PathPrefix("/api").Subrouter()
	api.NotFoundHandler = NotFound{}
	api.MethodNotAllowedHandler = MethodNotAllowed{}

	// Handle private server link submissions
	api.HandleFunc("/add-server", routes.AddServers).Methods("POST")
	// Handle requests for new games
	api.HandleFunc("/request-game", routes.RequestGame).Methods("POST")

	// Handle calls to list active games
	api.HandleFunc("/games", routes.GetGames).Methods("GET")
	// Handle calls to list trending games
	api.HandleFunc("/games/trending", routes.GetTrendingGames).Methods("GET")
	// Handle calls to view a game
	api.HandleFunc("/games/{gameId:[0-9]+}", routes.GetGame).Methods("GET")
	// Handle calls to page through a game's servers
	api.HandleFunc("/games/{gameId:[0-9]+}/servers", routes.GetGameServers).Methods("GET")
	// Handle game name search
	api.HandleFunc("/search", routes.SearchGames).Methods("GET")

	// Handle session management from the settings page
	api.HandleFunc("/settings/sessions", routes.GetSessions).Methods("GET")
	api.HandleFunc("/settings/sessions", routes.DeleteOtherSessions).Methods("DELETE")
	api.HandleFunc("/settings/sessions/{sessionId}", routes.DeleteSession).Methods("DELETE")
	// Handle account deletion and data export
	api.HandleFunc("/settings/delete-account", routes.DeleteAccount).Methods("POST")
	api.HandleFunc("/settings/export", routes.ExportData).Methods("POST")

	// Handle static traffic
	router.PathPrefix("/").Handler(http.FileServer(staticFileSystem{http.Dir("static")})).Methods("GET")

	// Outermost first: log everything, then recover panics, then the
	// cross-cutting gates
	router.Use(requestLog)
	router.Use(recoverPanic)
	router.Use(secureHeaders)
	router.Use(throttle(rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)))
	router.Use(checkOrigin)
	router.Use(checkAuthenticated)

	// Create http server
	srv := &http.Server{
		Handler:      router,
		Addr:         fmt.Sprintf("%s:%s", cfg.Listen, cfg.Port),
		WriteTimeout: cfg.WriteTimeout,
		ReadTimeout:  cfg.ReadTimeout,
	}

	// Start server
	log.Println("Web server is now listening for connections")
	if cfg.UseSSL {
		log.Fatal(srv.ListenAndServeTLS("certs/cert.crt", "certs/key.pem"))
	} else {
		log.Fatal(srv.ListenAndServe())
	}
}
