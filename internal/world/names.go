package world

import "strconv"

// PlanetName returns the display name of the i-th planet (zero-based).
func PlanetName(i int) string {
	return "Planet-" + strconv.Itoa(i+1)
}

// AsteroidName returns the display name of the i-th asteroid (zero-based).
func AsteroidName(i int) string {
	return "Asteroid-" + strconv.Itoa(i+1)
}
