package bot

import (
	"fmt"

	"github.com/google/uuid"
)

// NamePrefix marks every synthesized player name.
const NamePrefix = "Bot-"

// NewName returns a fresh automated-player name such as "Bot-3f9c".
// Suffixes are short, so callers seating a bot must retry on collision.
func NewName() string {
	return fmt.Sprintf("%s%s", NamePrefix, uuid.NewString()[:4])
}
