package util

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DefaultWorkDir returns the per-user work directory, optionally suffixed
// with a sub path.
func DefaultWorkDir(sub string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	dir := filepath.Join(home, ".supportchat")
	if sub != "" {
		dir = filepath.Join(dir, sub)
	}
	return dir
}

func PrepareDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

func NewUUID() string {
	return uuid.NewString()
}

// Colors and animals for randomly generated display names.
var (
	nameColors = []string{
		"amaranth", "amber", "amethyst", "apricot", "aquamarine", "azure",
		"beige", "black", "blue", "blush", "bronze", "brown", "burgundy",
		"cerulean", "champagne", "chartreuse", "chocolate", "cobalt", "coffee",
		"copper", "coral", "crimson", "cyan", "desert", "electric", "emerald",
		"erin", "gold", "gray", "green", "harlequin", "indigo", "ivory", "jade",
		"jungle", "lavender", "lemon", "lilac", "lime", "magenta", "maroon",
		"mauve", "navy", "ocher", "olive", "orange", "orchid", "peach", "pear",
		"periwinkle", "pink", "plum", "purple", "raspberry", "red", "rose",
		"ruby", "salmon", "sangria", "sapphire", "scarlet", "silver", "slate",
		"tan", "taupe", "teal", "turquoise", "violet", "viridian", "white",
		"yellow",
	}
	nameAnimals = []string{
		"alligator", "bear", "cat", "chinchilla", "cow", "coyote", "crocodile",
		"dolphin", "duck", "fish", "fox", "gecko", "hamster", "hippopotamus",
		"jaguar", "leopard", "liger", "lion", "lynx", "monkey", "ocelot",
		"octopus", "panther", "penguin", "pig", "rhinoceros", "seal", "skunk",
		"sloth", "starfish", "stingray", "tiger", "tortoise", "toucan",
		"turtle", "whale", "wolf",
	}
)

// RandomName returns a "color-animal" display name for anonymous users.
func RandomName() string {
	color := nameColors[rand.Intn(len(nameColors))]
	animal := nameAnimals[rand.Intn(len(nameAnimals))]
	return color + "-" + animal
}

// IsRandomName reports whether name looks like a generated color-animal name.
func IsRandomName(name string) bool {
	parts := strings.SplitN(name, "-", 2)
	if len(parts) != 2 {
		return false
	}
	return contains(nameColors, parts[0]) && contains(nameAnimals, parts[1])
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
