package domain

// A firefighter moves between buildings and keeps a running total
// of the Manhattan distance it has covered.
type Firefighter struct {
	location         Coordinate
	distanceTraveled int
}

func NewFirefighter(start Coordinate) *Firefighter {
	return &Firefighter{location: start}
}

func (f *Firefighter) Location() Coordinate { return f.location }

func (f *Firefighter) DistanceTraveled() int { return f.distanceTraveled }

// Move to the destination and put out its fire if it is burning.
// Arriving at a building that is not burning is tolerated: it only means
// the plan contained a redundant stop.
func (f *Firefighter) DispatchTo(destination *Building) {
	f.distanceTraveled += Distance(f.location, destination.Location())
	f.location = destination.Location()

	if destination.IsBurning() {
		// ErrNoActiveFire is the only failure and IsBurning rules it out.
		_ = destination.ExtinguishFire()
	}
}
