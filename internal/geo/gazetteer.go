package geo

import (
	"sort"
	"strings"

	"github.com/dhconnelly/rtreego"
	"golang.org/x/text/cases"
)

const (
	tolerance   = 0.0001
	minChildren = 25
	maxChildren = 50
	dimensions  = 2
)

// Place is a named point from the populated places dataset
type Place struct {
	Name       string
	Coordinate Coordinate
	Population int64
}

// placeItem wraps a Place for R-Tree indexing
type placeItem struct {
	*Place
	rect *rtreego.Rect
}

func (pi *placeItem) Bounds() *rtreego.Rect {
	return pi.rect
}

// Gazetteer resolves place names to coordinates and coordinates to the
// nearest named place. It is not safe for concurrent mutation; it is built
// once and only read afterwards.
type Gazetteer struct {
	places []*Place // sorted by folded name
	folded []string
	tree   *rtreego.Rtree
}

// NewGazetteer indexes the given places
func NewGazetteer(places []*Place) *Gazetteer {
	fold := cases.Fold()

	type entry struct {
		key   string
		place *Place
	}
	entries := make([]entry, 0, len(places))
	tree := rtreego.NewTree(dimensions, minChildren, maxChildren)

	for _, place := range places {
		if place == nil {
			continue
		}
		entries = append(entries, entry{key: fold.String(place.Name), place: place})

		point := rtreego.Point{place.Coordinate.Lon(), place.Coordinate.Lat()}
		tree.Insert(&placeItem{Place: place, rect: point.ToRect(tolerance)})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].key < entries[j].key
	})

	g := &Gazetteer{
		places: make([]*Place, len(entries)),
		folded: make([]string, len(entries)),
		tree:   tree,
	}
	for i, e := range entries {
		g.places[i] = e.place
		g.folded[i] = e.key
	}

	return g
}

// Size returns the number of indexed places
func (g *Gazetteer) Size() int {
	return len(g.places)
}

// Lookup finds a place by name, ignoring case. Exact matches win over
// prefix matches; among equal matches the most populous place wins.
func (g *Gazetteer) Lookup(name string) (*Place, bool) {
	key := cases.Fold().String(strings.TrimSpace(name))
	if key == "" {
		return nil, false
	}

	start := sort.SearchStrings(g.folded, key)

	var exact, prefix *Place
	for i := start; i < len(g.folded) && strings.HasPrefix(g.folded[i], key); i++ {
		place := g.places[i]
		if g.folded[i] == key {
			exact = morePopulous(exact, place)
		} else {
			prefix = morePopulous(prefix, place)
		}
	}

	if exact != nil {
		return exact, true
	}
	return prefix, prefix != nil
}

// Nearest returns the place closest to c, measured in degree space
func (g *Gazetteer) Nearest(c Coordinate) (*Place, bool) {
	if g.Size() == 0 {
		return nil, false
	}

	result := g.tree.NearestNeighbor(rtreego.Point{c.Lon(), c.Lat()})
	item, ok := result.(*placeItem)
	if !ok || item.Place == nil {
		return nil, false
	}
	return item.Place, true
}

func morePopulous(current, candidate *Place) *Place {
	if current == nil || candidate.Population > current.Population {
		return candidate
	}
	return current
}
