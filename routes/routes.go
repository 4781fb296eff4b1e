package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"rolinks/cache"
	"rolinks/config"
	"rolinks/roblox"
	"rolinks/utils"
)

// Package-wide collaborators, wired once from main. Handlers read Cfg by
// value and never consult the environment themselves
var (
	Cfg    = config.Default()
	Roblox *roblox.Client

	gamesCache    = cache.New(Cfg.GamesCacheTTL)
	searchCache   = cache.New(Cfg.SearchCacheTTL)
	trendingCache = cache.New(Cfg.TrendingCacheTTL)
)

// Setup installs the runtime configuration and the Roblox client, and
// rebuilds the read caches with the configured TTLs
func Setup(cfg config.Config, client *roblox.Client) {
	Cfg = cfg
	Roblox = client
	gamesCache = cache.New(cfg.GamesCacheTTL)
	searchCache = cache.New(cfg.SearchCacheTTL)
	trendingCache = cache.New(cfg.TrendingCacheTTL)
}

// internalError logs the fault server-side and sends the caller an opaque 500
func internalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal error", "method", r.Method, "path", r.URL.Path, "error", err)
	utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
}

// windowText renders a rate-limit window for error messages, e.g. "5 minutes"
func windowText(d time.Duration) string {
	if d < time.Hour {
		minutes := int(d.Minutes())
		if minutes == 1 {
			return "minute"
		}
		return fmt.Sprintf("%d minutes", minutes)
	}
	hours := int(d.Hours())
	if hours == 1 {
		return "hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
