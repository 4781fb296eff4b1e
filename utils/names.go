package utils

import (
	"math/rand"
)

// Display names shown next to submitted links. Users never pick these, so a
// short two-word combination is enough to tell rows apart in a listing
var adjectives = []string{
	"Ancient", "Blazing", "Brave", "Calm", "Clever", "Cosmic", "Crimson",
	"Daring", "Electric", "Emerald", "Frozen", "Gentle", "Gilded", "Hidden",
	"Lucky", "Mighty", "Neon", "Noble", "Quiet", "Rapid", "Royal", "Rustic",
	"Silent", "Silver", "Solar", "Swift", "Turbo", "Vivid", "Wild", "Zesty",
}

var nouns = []string{
	"Falcon", "Harbor", "Meadow", "Summit", "Lagoon", "Canyon", "Comet",
	"Ember", "Galaxy", "Glacier", "Grove", "Horizon", "Island", "Lantern",
	"Nebula", "Oasis", "Orbit", "Phoenix", "Prairie", "Reef", "River",
	"Sparrow", "Tundra", "Valley", "Voyager", "Willow", "Zephyr",
}

// GenerateName produces a display name for a newly submitted server
func GenerateName() string {
	return adjectives[rand.Intn(len(adjectives))] + " " + nouns[rand.Intn(len(nouns))]
}
