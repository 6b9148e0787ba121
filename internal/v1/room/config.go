package room

import (
	"github.com/dooshiifox/splatoon-comp/planner/go/internal/v1/types"
)

// Config is a room's join policy. It is fixed by the first joiner when
// the room is created and lives until the room closes.
type Config struct {
	// passwordHash is the bcrypt hash of the room password, or empty
	// when the room is open.
	passwordHash string

	// newUsersDefaultEditor grants edit instead of view to joiners
	// after the first.
	newUsersDefaultEditor bool
}

func newConfig(passwordHash string, defaultEditor bool) Config {
	return Config{passwordHash: passwordHash, newUsersDefaultEditor: defaultEditor}
}

// defaultAccessLevel is the level granted to joiners after the first.
// The first joiner always becomes admin regardless.
func (c Config) defaultAccessLevel() types.AccessLevel {
	if c.newUsersDefaultEditor {
		return types.AccessLevelEdit
	}
	return types.AccessLevelView
}
