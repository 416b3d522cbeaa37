// Package geo maps coordinates to pricing regions for the client's map
// widget. Region boundaries are a fixed table; there is no external
// geocoding involved.
package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"bangalorehomes/server/internal/pricing"
)

// RegionFeature is one priced neighborhood with its geography. Center is in
// orb's lon/lat order; Boundary is a coarse box around the neighborhood.
type RegionFeature struct {
	Region   pricing.Region
	Center   orb.Point
	Boundary orb.Polygon
}

// boundarySpan is the half-width, in degrees, of a region's bounding box.
// Roughly two kilometers at Bangalore's latitude.
const boundarySpan = 0.018

var centers = map[string]orb.Point{
	"indiranagar":     {77.6412, 12.9719},
	"koramangala":     {77.6245, 12.9352},
	"jayanagar":       {77.5838, 12.9308},
	"whitefield":      {77.7500, 12.9698},
	"electronic-city": {77.6602, 12.8452},
	"rajajinagar":     {77.5554, 12.9916},
	"hebbal":          {77.5970, 13.0358},
}

// Locator answers point-in-region queries against the fixed region table.
type Locator struct {
	features []RegionFeature
}

func NewLocator() *Locator {
	regions := pricing.Regions()
	features := make([]RegionFeature, 0, len(regions))
	for _, region := range regions {
		center := centers[region.ID]
		bound := orb.Bound{
			Min: orb.Point{center[0] - boundarySpan, center[1] - boundarySpan},
			Max: orb.Point{center[0] + boundarySpan, center[1] + boundarySpan},
		}
		features = append(features, RegionFeature{
			Region:   region,
			Center:   center,
			Boundary: bound.ToPolygon(),
		})
	}
	return &Locator{features: features}
}

// Features returns the region table with geography attached.
func (l *Locator) Features() []RegionFeature {
	out := make([]RegionFeature, len(l.features))
	copy(out, l.features)
	return out
}

// Locate returns the region whose boundary contains the point, or the one
// with the nearest center when the point falls between boundaries. The
// second return reports whether the point was inside a boundary.
func (l *Locator) Locate(lat, lng float64) (pricing.Region, bool) {
	point := orb.Point{lng, lat}

	for _, f := range l.features {
		if planar.PolygonContains(f.Boundary, point) {
			return f.Region, true
		}
	}

	nearest := l.features[0]
	nearestDist := planar.Distance(point, nearest.Center)
	for _, f := range l.features[1:] {
		if d := planar.Distance(point, f.Center); d < nearestDist {
			nearest = f
			nearestDist = d
		}
	}
	return nearest.Region, false
}

// FeatureCollection exports the region boundaries as GeoJSON for the map
// overlay.
func (l *Locator) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, f := range l.features {
		feature := geojson.NewFeature(f.Boundary)
		feature.Properties["id"] = f.Region.ID
		feature.Properties["name"] = f.Region.Name
		feature.Properties["basePrice"] = f.Region.BasePrice
		fc.Append(feature)
	}
	return fc
}
