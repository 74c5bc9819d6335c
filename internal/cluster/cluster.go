package cluster

import (
	"math"

	"github.com/opengreens/verdant/internal/model"
)

const earthRadiusKM = 6371

// Group is a non-empty set of same-category issues close enough to the seed
// record to become a single community event. Members appear in input order;
// the first member is the seed.
type Group struct {
	Category Category
	Issues   []model.Issue
}

// Seed returns the record that anchored the group.
func (g Group) Seed() model.Issue {
	return g.Issues[0]
}

// Center returns the arithmetic mean of the member coordinates, used to
// place the event marker.
func (g Group) Center() (lat, lng float64) {
	for _, issue := range g.Issues {
		lat += issue.Latitude
		lng += issue.Longitude
	}
	n := float64(len(g.Issues))
	return lat / n, lng / n
}

// Cluster partitions issues into groups of nearby, same-category records
// using a greedy single pass: the first unused record seeds a group, and
// every later unused record within maxDistanceKM of the seed that shares the
// seed's category joins it.
//
// Distance and category are compared against the seed only. Two non-seed
// members of one group may be farther apart than maxDistanceKM from each
// other; the group is the seed's one-hop neighborhood, not a transitive
// closure. Traversal follows input order, so the output is deterministic:
// every input record lands in exactly one group, groups are ordered by their
// seed's position in the input, and members keep input order.
//
// O(n²) pairwise checks; batches are small (tens to low hundreds of rows)
// after upstream filtering.
func Cluster(issues []model.Issue, maxDistanceKM float64, table Table) []Group {
	if len(issues) == 0 {
		return nil
	}

	used := make([]bool, len(issues))
	var groups []Group

	for i, seed := range issues {
		if used[i] {
			continue
		}

		used[i] = true
		group := Group{
			Category: table.Categorize(seed),
			Issues:   []model.Issue{seed},
		}

		for j, candidate := range issues {
			if used[j] || i == j {
				continue
			}
			if table.Categorize(candidate) != group.Category {
				continue
			}
			if HaversineKM(seed.Latitude, seed.Longitude, candidate.Latitude, candidate.Longitude) <= maxDistanceKM {
				group.Issues = append(group.Issues, candidate)
				used[j] = true
			}
		}

		groups = append(groups, group)
	}

	return groups
}

// HaversineKM returns the great-circle distance between two points in
// kilometers.
func HaversineKM(lat1, lng1, lat2, lng2 float64) float64 {
	const toRad = math.Pi / 180

	lat1, lng1 = lat1*toRad, lng1*toRad
	lat2, lng2 = lat2*toRad, lng2*toRad

	dlat := lat2 - lat1
	dlng := lng2 - lng1

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlng/2)*math.Sin(dlng/2)

	return earthRadiusKM * 2 * math.Asin(math.Sqrt(a))
}
