// Package roblox fetches public game metadata from the Roblox web APIs. A
// place id resolves to a universe id, which in turn yields the game's display
// name and icon. Callers treat every failure here as non-fatal; a requested
// game keeps its placeholder name when the lookup falls through.
package roblox

import (
	"context"
	"fmt"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const iconSize = 512

// Client talks to the three Roblox API hosts. The base URLs are fields so
// tests can point them at local servers
type Client struct {
	HTTP          *http.Client
	UniverseBase  string
	GamesBase     string
	ThumbnailBase string
}

// NewClient makes a client against the production Roblox hosts
func NewClient(timeout time.Duration) *Client {
	return &Client{
		HTTP:          &http.Client{Timeout: timeout},
		UniverseBase:  "https://apis.roblox.com",
		GamesBase:     "https://games.roblox.com",
		ThumbnailBase: "https://thumbnails.roblox.com",
	}
}

// PlaceDetails is what a game request needs to backfill its row
type PlaceDetails struct {
	Name     string
	ImageURL string
}

type universeResponse struct {
	UniverseID *int64 `json:"universeId"`
}

type gamesResponse struct {
	Data []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"data"`
}

type thumbnailResponse struct {
	Data []struct {
		TargetID int64  `json:"targetId"`
		State    string `json:"state"`
		ImageURL string `json:"imageUrl"`
	} `json:"data"`
}

func (c *Client) getJSON(ctx context.Context, url string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("roblox api returned status %d for %s", resp.StatusCode, url)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// PlaceDetails resolves a place id to the game's name and icon URL
func (c *Client) PlaceDetails(ctx context.Context, placeID int64) (*PlaceDetails, error) {
	// Place id to universe id
	var universe universeResponse
	url := fmt.Sprintf("%s/universes/v1/places/%d/universe", c.UniverseBase, placeID)
	if err := c.getJSON(ctx, url, &universe); err != nil {
		return nil, err
	}
	if universe.UniverseID == nil {
		return nil, fmt.Errorf("no universe found for place %d", placeID)
	}
	universeID := *universe.UniverseID

	// Universe id to game name
	var games gamesResponse
	url = fmt.Sprintf("%s/v1/games?universeIds=%d", c.GamesBase, universeID)
	if err := c.getJSON(ctx, url, &games); err != nil {
		return nil, err
	}
	if len(games.Data) == 0 {
		return nil, fmt.Errorf("no game data for universe %d", universeID)
	}

	// Universe id to icon
	var thumbs thumbnailResponse
	url = fmt.Sprintf("%s/v1/games/icons?universeIds=%d&size=%dx%d&format=Png",
		c.ThumbnailBase, universeID, iconSize, iconSize)
	if err := c.getJSON(ctx, url, &thumbs); err != nil {
		return nil, err
	}
	if len(thumbs.Data) == 0 {
		return nil, fmt.Errorf("no icon data for universe %d", universeID)
	}

	return &PlaceDetails{
		Name:     games.Data[0].Name,
		ImageURL: thumbs.Data[0].ImageURL,
	}, nil
}
