package usecase

import (
	"context"

	"github.com/riskibarqy/bracket-harvest/internal/domain/matchset"
	"github.com/riskibarqy/bracket-harvest/internal/domain/player"
	"github.com/riskibarqy/bracket-harvest/internal/domain/team"
	"github.com/riskibarqy/bracket-harvest/internal/domain/tournament"
)

// Store is one persistence session. Every repository it hands out writes
// into the same transactional scope, and nothing is durable until Commit.
type Store interface {
	Tournaments() tournament.Repository
	Events() tournament.EventRepository
	Players() player.Repository
	Teams() team.Repository
	Sets() matchset.Repository
	Commit(ctx context.Context) error
}
