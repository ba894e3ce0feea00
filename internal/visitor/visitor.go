// Package visitor holds the per-entity callback that prints tick numbers and
// player hero identifiers as the replay is walked.
package visitor

import (
	"errors"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
)

const (
	PlayerPawnClass = "CCitadelPlayerPawn"
	HeroIDField     = "m_nHeroID"
)

var playerPawnHash = xxhash.Sum64String(PlayerPawnClass)

var ErrMissingField = errors.New("entity field missing")

// Entity is the read-only view of a decoded entity handed out by the replay
// library.
type Entity interface {
	GetClassName() string
	Get(name string) interface{}
}

// Delta describes how an entity changed on this update. It is passed through
// untouched.
type Delta interface {
	String() string
}

type HeroVisitor struct {
	Out io.Writer
	// TickEnd, when set, suppresses output for ticks past it.
	TickEnd *int32
}

func New(out io.Writer, tickEnd *int32) *HeroVisitor {
	return &HeroVisitor{Out: out, TickEnd: tickEnd}
}

// OnEntity prints the tick and, for player pawns, the hero id. A player pawn
// without a hero id aborts the run.
func (v *HeroVisitor) OnEntity(tick int32, _ Delta, e Entity) error {
	if v.TickEnd != nil && tick > *v.TickEnd {
		return nil
	}
	if _, err := fmt.Fprintf(v.Out, "TICK: %d\n", tick); err != nil {
		return err
	}

	if !IsPlayerPawn(e) {
		return nil
	}
	id, err := HeroID(e)
	if err != nil {
		return fmt.Errorf("tick %d: %w", tick, err)
	}
	_, err = fmt.Fprintf(v.Out, "ID: %d\n", id)
	return err
}

func IsPlayerPawn(e Entity) bool {
	return xxhash.Sum64String(e.GetClassName()) == playerPawnHash
}

// HeroID reads m_nHeroID. Decoders differ in the width they hand back, so
// any non-negative integer that fits in uint32 is accepted.
func HeroID(e Entity) (uint32, error) {
	val := e.Get(HeroIDField)
	switch v := val.(type) {
	case uint32:
		return v, nil
	case uint64:
		if v <= 0xFFFFFFFF {
			return uint32(v), nil
		}
	case int32:
		if v >= 0 {
			return uint32(v), nil
		}
	case int64:
		if v >= 0 && v <= 0xFFFFFFFF {
			return uint32(v), nil
		}
	case nil:
		return 0, fmt.Errorf("%s on %s: %w", HeroIDField, e.GetClassName(), ErrMissingField)
	}
	return 0, fmt.Errorf("%s on %s has unexpected value %v: %w",
		HeroIDField, e.GetClassName(), val, ErrMissingField)
}
