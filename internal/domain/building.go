package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNoActiveFire      = errors.New("no active fire")
	ErrFireproofBuilding = errors.New("building is fireproof")
)

// Represents a single city block. A building is either burning or not;
// the fire station never burns.
type Building struct {
	location  Coordinate
	burning   bool
	fireproof bool
}

func NewBuilding(location Coordinate) *Building {
	return &Building{location: location}
}

func (b *Building) Location() Coordinate { return b.location }

func (b *Building) IsBurning() bool { return b.burning }

func (b *Building) IsFireproof() bool { return b.fireproof }

// Set the building on fire.
func (b *Building) SetFire() error {
	if b.fireproof {
		return fmt.Errorf("set fire at %s: %w", b.location, ErrFireproofBuilding)
	}
	b.burning = true
	return nil
}

// Put out the fire. Fails with ErrNoActiveFire when nothing is burning.
func (b *Building) ExtinguishFire() error {
	if !b.burning {
		return fmt.Errorf("extinguish fire at %s: %w", b.location, ErrNoActiveFire)
	}
	b.burning = false
	return nil
}
