package domain

import (
	"errors"
	"fmt"
)

var ErrOutOfBounds = errors.New("coordinate outside city grid")

// City is a Width x Height grid with one building per cell.
// The building at the fire station location is fireproof.
type City struct {
	width       int
	height      int
	fireStation Coordinate
	buildings   [][]*Building
}

func NewCity(width, height int, fireStation Coordinate) (*City, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("new city: grid must be at least 1x1, got %dx%d", width, height)
	}

	c := &City{width: width, height: height, fireStation: fireStation}
	if !c.Contains(fireStation) {
		return nil, fmt.Errorf("new city: fire station %s: %w", fireStation, ErrOutOfBounds)
	}

	c.buildings = make([][]*Building, width)
	for x := 0; x < width; x++ {
		c.buildings[x] = make([]*Building, height)
		for y := 0; y < height; y++ {
			c.buildings[x][y] = NewBuilding(Coordinate{X: x, Y: y})
		}
	}
	c.buildings[fireStation.X][fireStation.Y].fireproof = true

	return c, nil
}

func (c *City) Width() int  { return c.width }
func (c *City) Height() int { return c.height }

func (c *City) Contains(loc Coordinate) bool {
	return loc.X >= 0 && loc.X < c.width && loc.Y >= 0 && loc.Y < c.height
}

// Return the building at loc.
func (c *City) BuildingAt(loc Coordinate) (*Building, error) {
	if !c.Contains(loc) {
		return nil, fmt.Errorf("building at %s: %w", loc, ErrOutOfBounds)
	}
	return c.buildings[loc.X][loc.Y], nil
}

func (c *City) FireStation() *Building {
	return c.buildings[c.fireStation.X][c.fireStation.Y]
}

// Return the locations of all burning buildings, ordered by x then y.
func (c *City) BurningBuildings() []Coordinate {
	var out []Coordinate
	for x := 0; x < c.width; x++ {
		for y := 0; y < c.height; y++ {
			if c.buildings[x][y].IsBurning() {
				out = append(out, Coordinate{X: x, Y: y})
			}
		}
	}
	return out
}

// SetFires sets fire to every building at the given locations.
// It stops at the first building that cannot burn.
func SetFires(city *City, locations ...Coordinate) error {
	for _, loc := range locations {
		b, err := city.BuildingAt(loc)
		if err != nil {
			return fmt.Errorf("set fires: %w", err)
		}
		if err := b.SetFire(); err != nil {
			return fmt.Errorf("set fires: %w", err)
		}
	}
	return nil
}
