// ABOUTME: GeoJSON generation utilities
// ABOUTME: Converts risk searches and hotspots to GeoJSON FeatureCollections

package geojson

import (
	"encoding/json"
	"time"

	"github.com/harper/hazardwatch/internal/models"
	"github.com/harper/hazardwatch/internal/risk"
)

// FeatureCollection represents a GeoJSON FeatureCollection.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature represents a GeoJSON Feature.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// Geometry represents a GeoJSON Geometry.
type Geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

// PointCoordinates represents [longitude, latitude] for a Point.
type PointCoordinates [2]float64

// LineCoordinates represents [[lng, lat], [lng, lat], ...] for a LineString.
type LineCoordinates []PointCoordinates

// markerColors maps tier styles onto simplestyle marker colours.
var markerColors = map[string]string{
	"green":  "#16a34a",
	"yellow": "#ca8a04",
	"red":    "#dc2626",
}

func point(lat, lng float64, props map[string]any) Feature {
	return Feature{
		Type: "Feature",
		Geometry: Geometry{
			Type:        "Point",
			Coordinates: PointCoordinates{lng, lat},
		},
		Properties: props,
	}
}

func riskProps(p float64) map[string]any {
	c := risk.Classify(p)
	return map[string]any{
		"risk_percent": risk.Percent(p),
		"tier":         c.Label,
		"marker-color": markerColors[c.Style],
	}
}

// SearchFeature converts one search to a Point feature.
func SearchFeature(s models.SearchHistoryEntry) Feature {
	props := riskProps(risk.Value(s.RiskProbability))
	props["kind"] = "search"
	props["id"] = string(s.ID)
	if s.RiskProbability != nil {
		props["risk_probability"] = *s.RiskProbability
	}
	if !s.SearchedAt.IsZero() {
		props["searched_at"] = s.SearchedAt.UTC().Format(time.RFC3339)
	}
	return point(s.Latitude, s.Longitude, props)
}

// ToPointsFeatureCollection converts searches to a FeatureCollection of Points.
func ToPointsFeatureCollection(searches []models.SearchHistoryEntry) *FeatureCollection {
	features := make([]Feature, 0, len(searches))
	for _, s := range searches {
		features = append(features, SearchFeature(s))
	}
	return &FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}

// AddCurrent appends the current position and its live risk, including any
// nearby hotspots. rec may be nil when the risk is unknown.
func (fc *FeatureCollection) AddCurrent(pos models.Position, rec *models.RiskRecord) {
	props := map[string]any{
		"kind":     "current",
		"accuracy": pos.Accuracy,
	}
	if rec != nil {
		for k, v := range riskProps(rec.Probability) {
			props[k] = v
		}
		props["risk_probability"] = rec.Probability
		if len(rec.Factors) > 0 {
			props["factors"] = rec.Factors
		}
	}
	fc.Features = append(fc.Features, point(pos.Latitude, pos.Longitude, props))

	if rec == nil {
		return
	}
	for _, n := range rec.NearbyRisks {
		props := riskProps(n.Probability)
		props["kind"] = "nearby"
		props["risk_probability"] = n.Probability
		if n.RiskLevel != "" {
			props["risk_level"] = n.RiskLevel
		}
		fc.Features = append(fc.Features, point(n.Latitude, n.Longitude, props))
	}
}

// ToLineFeatureCollection converts searches to a single LineString trail in
// chronological order. Searches arrive newest first, as the dashboard lists
// them. Fewer than two searches yield an empty collection.
func ToLineFeatureCollection(searches []models.SearchHistoryEntry) *FeatureCollection {
	fc := &FeatureCollection{
		Type:     "FeatureCollection",
		Features: []Feature{},
	}
	if len(searches) < 2 {
		return fc
	}

	coords := make(LineCoordinates, len(searches))
	for i, s := range searches {
		coords[len(searches)-1-i] = PointCoordinates{s.Longitude, s.Latitude}
	}

	var total float64
	for i := 1; i < len(coords); i++ {
		total += risk.DistanceMeters(coords[i-1][1], coords[i-1][0], coords[i][1], coords[i][0])
	}

	fc.Features = append(fc.Features, Feature{
		Type: "Feature",
		Geometry: Geometry{
			Type:        "LineString",
			Coordinates: coords,
		},
		Properties: map[string]any{
			"kind":          "trail",
			"point_count":   len(searches),
			"length_meters": total,
		},
	})
	return fc
}

// ToJSON serializes a FeatureCollection to JSON.
func (fc *FeatureCollection) ToJSON() ([]byte, error) {
	return json.Marshal(fc)
}

// ToJSONIndent serializes a FeatureCollection to indented JSON.
func (fc *FeatureCollection) ToJSONIndent() ([]byte, error) {
	return json.MarshalIndent(fc, "", "  ")
}
