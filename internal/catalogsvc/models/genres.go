package models

// Genres is the fixed genre vocabulary. A game carries between one and
// six of these.
var Genres = []string{
	"Action",
	"Adventure",
	"RPG",
	"Strategy",
	"Simulation",
	"Sports",
	"Racing",
	"Puzzle",
	"Shooter",
	"Platformer",
	"Fighting",
	"Horror",
	"Survival",
	"Stealth",
	"MMO",
	"Indie",
}

// MaxGenresPerGame bounds the genre list on a catalog entry.
const MaxGenresPerGame = 6

// ValidGenre reports whether g is part of the genre vocabulary.
func ValidGenre(g string) bool {
	for _, v := range Genres {
		if v == g {
			return true
		}
	}
	return false
}

// ValidGenres checks the whole list a catalog mutation supplies:
// non-empty, at most MaxGenresPerGame, every member from the vocabulary.
func ValidGenres(gs []string) bool {
	if len(gs) == 0 || len(gs) > MaxGenresPerGame {
		return false
	}
	for _, g := range gs {
		if !ValidGenre(g) {
			return false
		}
	}
	return true
}
