package geo

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinateRoundTrip(t *testing.T) {
	c := NewCoordinate(37.618423, 55.751244)

	assert.Equal(t, 37.618423, c.Lon())
	assert.Equal(t, 55.751244, c.Lat())
	assert.Equal(t, "37.618423,55.751244", c.String())
}

func TestCoordinateAddIsReversible(t *testing.T) {
	start := NewCoordinate(37.618423, 55.751244)

	for _, d := range []float64{0.05, -0.05, 1e-10, 0.123456789123, 179.99, 3.3e5, math.Pi} {
		moved := start.Add(d, 0).Add(-d, 0)
		assert.Equal(t, start, moved, "delta %v", d)

		moved = start.Add(0, d).Add(0, -d)
		assert.Equal(t, start, moved, "delta %v", d)
	}
}

func TestCoordinateAddAccumulatesExactly(t *testing.T) {
	c := NewCoordinate(37.618423, 55.751244)
	for i := 0; i < 4; i++ {
		c = c.Add(0.05, 0)
	}

	assert.InDelta(t, 37.818423, c.Lon(), 1e-9)
	assert.Equal(t, 55.751244, c.Lat())
}

func TestCoordinateSaturates(t *testing.T) {
	c := NewCoordinate(math.Inf(1), math.Inf(-1))
	assert.Equal(t, int64(math.MaxInt64), c.lon)
	assert.Equal(t, int64(math.MinInt64), c.lat)

	c = c.Add(1, -1)
	assert.Equal(t, int64(math.MaxInt64), c.lon)
	assert.Equal(t, int64(math.MinInt64), c.lat)

	assert.Equal(t, NewCoordinate(0, 0), NewCoordinate(math.NaN(), math.NaN()))
}

func TestCoordinateResolutionAndRange(t *testing.T) {
	start := NewCoordinate(37.618423, 55.751244)

	// below half a nanodegree a pan is a no-op
	assert.Equal(t, start, start.Add(4e-10, 4e-10))
	assert.Equal(t, start.lon+1, start.Add(6e-10, 0).lon)

	// reversibility holds inside about ±9.2e9 degrees
	assert.Equal(t, start, start.Add(9e9, 0).Add(-9e9, 0))

	// beyond it both pans saturate and the round trip no longer holds
	far := start.Add(1e10, 0)
	assert.Equal(t, int64(math.MaxInt64), far.lon)
	assert.Equal(t, int64(-1), far.Add(-1e10, 0).lon)
}

func TestProjectionCenter(t *testing.T) {
	center := NewCoordinate(37.618423, 55.751244)
	p := NewProjection(center, 8, 600, 450)

	assert.Equal(t, Point{X: 300, Y: 225}, p.Project(center))
	assert.True(t, p.IsInBounds(center))

	back := p.Unproject(300, 225)
	assert.InDelta(t, center.Lon(), back.Lon(), 1e-6)
	assert.InDelta(t, center.Lat(), back.Lat(), 1e-6)
}

func TestProjectionOrientation(t *testing.T) {
	center := NewCoordinate(37.618423, 55.751244)
	p := NewProjection(center, 10, 600, 450)

	east := p.Project(center.Add(0.05, 0))
	north := p.Project(center.Add(0, 0.05))

	assert.Greater(t, east.X, 300)
	assert.Equal(t, 225, east.Y)
	assert.Less(t, north.Y, 225)
	assert.Equal(t, 300, north.X)
}

func TestProjectionBeyondPoles(t *testing.T) {
	p := NewProjection(NewCoordinate(37.618423, 55.751244), 8, 600, 450)
	assert.False(t, p.IsInBounds(NewCoordinate(37.618423, 95)))
	assert.False(t, p.IsInBounds(NewCoordinate(37.618423, -90)))

	// a center panned past the pole projects nothing
	polar := NewCoordinate(37.618423, 90.05)
	p = NewProjection(polar, 8, 600, 450)
	assert.False(t, p.IsInBounds(polar))
	assert.False(t, p.IsInBounds(NewCoordinate(37.618423, 55.751244)))
}

func TestProjectionBounds(t *testing.T) {
	center := NewCoordinate(37.618423, 55.751244)
	p := NewProjection(center, 12, 600, 450)

	bounds := p.GetBounds()
	assert.True(t, bounds.Contains(center))
	assert.False(t, bounds.Contains(center.Add(1, 0)))
	assert.False(t, p.IsInBounds(center.Add(0, 1)))
}

func testPlaces() []*Place {
	return []*Place{
		{Name: "Moscow", Coordinate: NewCoordinate(37.6184, 55.7512), Population: 10452000},
		{Name: "Saint Petersburg", Coordinate: NewCoordinate(30.3164, 59.9390), Population: 4553000},
		{Name: "Moscow Mills", Coordinate: NewCoordinate(-90.9179, 38.9475), Population: 2500},
		{Name: "Paris", Coordinate: NewCoordinate(2.3522, 48.8566), Population: 9904000},
		{Name: "Paris", Coordinate: NewCoordinate(-95.5555, 33.6609), Population: 25000},
	}
}

func TestGazetteerLookup(t *testing.T) {
	g := NewGazetteer(testPlaces())
	require.Equal(t, 5, g.Size())

	tests := []struct {
		query string
		want  string
		lon   float64
		found bool
	}{
		{"Moscow", "Moscow", 37.6184, true},
		{"  moscow ", "Moscow", 37.6184, true},
		{"MOSCOW MILLS", "Moscow Mills", -90.9179, true},
		{"paris", "Paris", 2.3522, true},
		{"saint", "Saint Petersburg", 30.3164, true},
		{"Berlin", "", 0, false},
		{"   ", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			place, ok := g.Lookup(tt.query)
			require.Equal(t, tt.found, ok)
			if !tt.found {
				return
			}
			assert.Equal(t, tt.want, place.Name)
			assert.InDelta(t, tt.lon, place.Coordinate.Lon(), 1e-9)
		})
	}
}

func TestGazetteerNearest(t *testing.T) {
	g := NewGazetteer(testPlaces())

	place, ok := g.Nearest(NewCoordinate(37.7, 55.8))
	require.True(t, ok)
	assert.Equal(t, "Moscow", place.Name)

	place, ok = g.Nearest(NewCoordinate(2.0, 49.0))
	require.True(t, ok)
	assert.Equal(t, "Paris", place.Name)
	assert.Equal(t, int64(9904000), place.Population)

	_, ok = NewGazetteer(nil).Nearest(NewCoordinate(0, 0))
	assert.False(t, ok)
}

func TestShapefileLoaderLoadGazetteer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, PopulatedPlacesBase+".shp")

	w, err := shp.Create(path, shp.POINT)
	require.NoError(t, err)
	require.NoError(t, w.SetFields([]shp.Field{
		shp.StringField("NAME", 40),
		shp.NumberField("POP_MAX", 12),
	}))

	rows := []struct {
		name string
		lon  float64
		lat  float64
		pop  int
	}{
		{"Moscow", 37.6184, 55.7512, 10452000},
		{"", 10, 10, 5},
		{"Kazan", 49.1221, 55.7887, 1216965},
	}
	for i, row := range rows {
		w.Write(&shp.Point{X: row.lon, Y: row.lat})
		require.NoError(t, w.WriteAttribute(i, 0, row.name))
		require.NoError(t, w.WriteAttribute(i, 1, row.pop))
	}
	w.Close()

	g, err := NewShapefileLoader(dir).LoadGazetteer()
	require.NoError(t, err)
	assert.Equal(t, 2, g.Size())

	place, ok := g.Lookup("kazan")
	require.True(t, ok)
	assert.Equal(t, "Kazan", place.Name)
	assert.Equal(t, int64(1216965), place.Population)
	assert.InDelta(t, 55.7887, place.Coordinate.Lat(), 1e-9)
}

func TestShapefileLoaderMissingFile(t *testing.T) {
	_, err := NewShapefileLoader(t.TempDir()).LoadGazetteer()
	assert.Error(t, err)
}
