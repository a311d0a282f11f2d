package geo

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
)

// PopulatedPlacesBase is the Natural Earth populated places dataset name
const PopulatedPlacesBase = "ne_50m_populated_places"

// ShapefileLoader loads and parses ESRI shapefiles
type ShapefileLoader struct {
	dataDir string
}

// NewShapefileLoader creates a new shapefile loader
func NewShapefileLoader(dataDir string) *ShapefileLoader {
	return &ShapefileLoader{
		dataDir: dataDir,
	}
}

// LoadGazetteer loads the populated places dataset and indexes it
func (s *ShapefileLoader) LoadGazetteer() (*Gazetteer, error) {
	places, err := s.LoadPlaces(filepath.Join(s.dataDir, PopulatedPlacesBase+".shp"))
	if err != nil {
		return nil, err
	}
	return NewGazetteer(places), nil
}

// LoadPlaces loads named point features from a shapefile.
// Points without a name are skipped.
func (s *ShapefileLoader) LoadPlaces(path string) ([]*Place, error) {
	shape, err := shp.Open(path)
	if err != nil {
		return nil, err
	}
	defer shape.Close()

	nameIdx, popIdx := -1, -1
	for i, field := range shape.Fields() {
		// Field names are fixed-size byte arrays padded with nulls
		switch strings.TrimRight(string(field.Name[:]), "\x00 ") {
		case "NAME", "NAMEASCII", "NAME_EN":
			if nameIdx < 0 {
				nameIdx = i
			}
		case "POP_MAX":
			popIdx = i
		}
	}

	places := make([]*Place, 0)
	if nameIdx < 0 {
		return places, nil
	}

	for shape.Next() {
		n, p := shape.Shape()

		point, ok := p.(*shp.Point)
		if !ok {
			continue
		}

		name := cleanAttribute(shape.ReadAttribute(n, nameIdx))
		if name == "" {
			continue
		}

		var population int64
		if popIdx >= 0 {
			if pop, err := strconv.ParseFloat(cleanAttribute(shape.ReadAttribute(n, popIdx)), 64); err == nil {
				population = int64(pop)
			}
		}

		places = append(places, &Place{
			Name:       name,
			Coordinate: NewCoordinate(point.X, point.Y),
			Population: population,
		})
	}

	return places, nil
}

func cleanAttribute(attr string) string {
	return strings.TrimSpace(strings.Trim(attr, "\x00"))
}
