package player

import (
	"fmt"
	"strconv"
)

// Player is a competitor identified by the source's stable id.
type Player struct {
	ID       int64
	GamerTag string
}

func (p Player) Validate() error {
	if p.ID <= 0 {
		return fmt.Errorf("player id is required")
	}
	return nil
}

// Label renders the player as "tag (id)".
func (p Player) Label() string {
	return p.GamerTag + " (" + strconv.FormatInt(p.ID, 10) + ")"
}
