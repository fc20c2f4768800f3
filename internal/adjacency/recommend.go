package adjacency

import (
	"sort"

	"github.com/imyousuf/TileSage/internal/tiled"
)

// Recommender answers interactive "most likely neighbor" lookups over a
// store. It computes no new statistics.
type Recommender struct {
	store *Store
}

// NewRecommender wraps a store for querying.
func NewRecommender(store *Store) *Recommender {
	return &Recommender{store: store}
}

// Top returns the ranked neighbors of key in one direction.
func (r *Recommender) Top(key tiled.Key, dir Direction, topN int) []Neighbor {
	return r.store.Query(key, dir, topN)
}

// Side holds the full ranked list for one cardinal direction of a
// neighborhood, with Best duplicating the head for convenience.
type Side struct {
	Direction Direction
	Best      *Neighbor
	Ranked    []Neighbor
}

// Corner is an inferred diagonal suggestion: a tile that ranks in both
// flanking cardinal lists. Count is the smaller of the two counts.
type Corner struct {
	Vertical   Direction // top or bottom
	Horizontal Direction // left or right
	Key        tiled.Key
	Count      int
}

// Neighborhood describes the 3x3 area around a hypothetical placement of
// Center: four independently queried sides plus inferred corners.
type Neighborhood struct {
	Center  tiled.Key
	Sides   []Side
	Corners []Corner
}

// Neighborhood queries all four directions from key independently and
// infers each diagonal from the intersection of the two flanking cardinal
// lists. topN bounds every ranked list.
func (r *Recommender) Neighborhood(key tiled.Key, topN int) *Neighborhood {
	n := &Neighborhood{Center: key}
	ranked := make(map[Direction][]Neighbor, len(Directions))
	for _, dir := range Directions {
		list := r.store.Query(key, dir, topN)
		ranked[dir] = list
		side := Side{Direction: dir, Ranked: list}
		if len(list) > 0 {
			best := list[0]
			side.Best = &best
		}
		n.Sides = append(n.Sides, side)
	}

	corners := []struct{ v, h Direction }{
		{Top, Left}, {Top, Right}, {Bottom, Left}, {Bottom, Right},
	}
	for _, c := range corners {
		if best, ok := intersectBest(ranked[c.v], ranked[c.h]); ok {
			n.Corners = append(n.Corners, Corner{
				Vertical: c.v, Horizontal: c.h,
				Key: best.Key, Count: best.Count,
			})
		}
	}
	return n
}

// intersectBest picks the strongest tile present in both ranked lists,
// scoring each candidate by its weaker count. Ties break on ascending key
// serialization so the inference is deterministic.
func intersectBest(a, b []Neighbor) (Neighbor, bool) {
	counts := make(map[tiled.Key]int, len(a))
	for _, n := range a {
		counts[n.Key] = n.Count
	}
	var shared []Neighbor
	for _, n := range b {
		if ca, ok := counts[n.Key]; ok {
			c := n.Count
			if ca < c {
				c = ca
			}
			shared = append(shared, Neighbor{Key: n.Key, Count: c})
		}
	}
	if len(shared) == 0 {
		return Neighbor{}, false
	}
	sort.Slice(shared, func(i, j int) bool {
		if shared[i].Count != shared[j].Count {
			return shared[i].Count > shared[j].Count
		}
		return shared[i].Key.String() < shared[j].Key.String()
	})
	return shared[0], true
}
