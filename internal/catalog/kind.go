// Package catalog holds the in-memory cross-reference model: catalog items
// (challenges, machines, fortresses), organization members, and the
// ownership links built by replaying member activity.
package catalog

import "fmt"

// Kind discriminates the catalog item variants.
type Kind int

const (
	KindChallenge Kind = iota
	KindMachine
	KindFortress
)

// Kinds lists every kind in fetch-independent, stable order.
var Kinds = []Kind{KindChallenge, KindMachine, KindFortress}

// String returns the display name used in logs ("Challenge", "Machine", "Fortress").
func (k Kind) String() string {
	switch k {
	case KindChallenge:
		return "Challenge"
	case KindMachine:
		return "Machine"
	case KindFortress:
		return "Fortress"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseObjectType maps an activity feed discriminator to a Kind.
// Returns false for object types the model does not know about.
func ParseObjectType(objectType string) (Kind, bool) {
	switch objectType {
	case "challenge":
		return KindChallenge, true
	case "machine":
		return KindMachine, true
	case "fortress":
		return KindFortress, true
	default:
		return 0, false
	}
}

// =============================================================================
// DIFFICULTY
// =============================================================================

// Difficulty is the platform's difficulty label, kept verbatim from the API.
type Difficulty string

const (
	DifficultyVeryEasy Difficulty = "Very Easy"
	DifficultyEasy     Difficulty = "Easy"
	DifficultyMedium   Difficulty = "Medium"
	DifficultyHard     Difficulty = "Hard"
	DifficultyInsane   Difficulty = "Insane"
)

var difficultyOrder = []Difficulty{
	DifficultyVeryEasy,
	DifficultyEasy,
	DifficultyMedium,
	DifficultyHard,
	DifficultyInsane,
}

// Rank returns the ascending sort position of d.
// Labels outside the known ladder (including the empty difficulty of
// fortresses) rank after Insane.
func (d Difficulty) Rank() int {
	for i, known := range difficultyOrder {
		if d == known {
			return i
		}
	}
	return len(difficultyOrder)
}

// Known reports whether d is one of the five platform labels.
func (d Difficulty) Known() bool {
	return d.Rank() < len(difficultyOrder)
}

// =============================================================================
// CHALLENGE CATEGORIES
// =============================================================================

// CategoryUnknown is assigned when the API returns a category id outside the table.
const CategoryUnknown = "Unknown"

// categories is indexed by category id - 1. Empty slots (3, 9, 13-19) are
// ids the platform reserves or no longer uses.
var categories = [22]string{
	"Reverse", "Crypto", "", "Pwn", "Web", "Misc", "Forensic", "Mobile", "",
	"Hardware", "GamePwn", "Blockchain", "", "", "", "", "", "", "",
	"AI-ML", "Coding", "ICS",
}

// CategoryName maps a challenge category id to its name.
// The second result is false when id is outside the table, in which case the
// name is CategoryUnknown.
func CategoryName(id int) (string, bool) {
	if id < 1 || id > len(categories) {
		return CategoryUnknown, false
	}
	return categories[id-1], true
}
