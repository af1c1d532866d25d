package models

// Platforms is the fixed platform tag vocabulary.
var Platforms = []string{
	"PC",
	"PlayStation 3",
	"PlayStation 4",
	"PlayStation 5",
	"Xbox 360",
	"Xbox One",
	"Xbox Series X/S",
	"Nintendo Switch",
	"Nintendo Wii",
	"iOS",
	"Android",
}

// ValidPlatforms reports whether ps is a non-empty list of known tags.
func ValidPlatforms(ps []string) bool {
	if len(ps) == 0 {
		return false
	}
	for _, p := range ps {
		found := false
		for _, v := range Platforms {
			if v == p {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
