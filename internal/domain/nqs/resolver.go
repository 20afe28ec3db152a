package nqs

import "math"

// Query carries the lookup hints for a district.
type Query struct {
	Name   string
	City   string
	Coords *Coordinates
}

// Resolver maps names or coordinates to a district key.
type Resolver struct {
	districts []District
}

// NewResolver copies the registry so later mutation by the caller is harmless.
func NewResolver(districts []District) *Resolver {
	return &Resolver{districts: append([]District(nil), districts...)}
}

// Resolve returns the matching district key. An exact name+city match wins;
// otherwise the planar nearest district to the coordinates is used.
// Distances are measured in raw degrees, so results near the poles or the
// antimeridian can be misranked.
func (r *Resolver) Resolve(q Query) (string, bool) {
	if q.Name != "" && q.City != "" {
		for _, d := range r.districts {
			if d.Name == q.Name && d.City == q.City {
				return d.Key, true
			}
		}
	}
	if q.Coords == nil {
		return "", false
	}
	var (
		bestKey  string
		bestDist float64
		found    bool
	)
	for _, d := range r.districts {
		// Strict less-than keeps the first district on ties.
		dist := math.Hypot(d.Lon-q.Coords.Lon, d.Lat-q.Coords.Lat)
		if !found || dist < bestDist {
			bestKey, bestDist, found = d.Key, dist, true
		}
	}
	return bestKey, found
}
