package maps

import (
	"context"
	"fmt"
	"time"

	"googlemaps.github.io/maps"
)

// MaxLegs caps directions lookups per plan.
const MaxLegs = 4

type directionsClient interface {
	Directions(ctx context.Context, r *maps.DirectionsRequest) ([]maps.Route, []maps.GeocodedWaypoint, error)
}

// Leg is the travel estimate between two consecutive spots.
type Leg struct {
	From     string        `json:"from"`
	To       string        `json:"to"`
	Duration time.Duration `json:"duration"`
	Distance string        `json:"distance"`
}

// Label renders a leg for inclusion in a prompt.
func (l Leg) Label() string {
	return fmt.Sprintf("%s -> %s: about %.0f min by transit (%s)", l.From, l.To, l.Duration.Minutes(), l.Distance)
}

// RouteService handles interactions with Google Maps API.
type RouteService struct {
	client directionsClient
}

// NewRouteService creates a new RouteService with the given API Key.
func NewRouteService(apiKey string) (*RouteService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &RouteService{client: client}, nil
}

// GetTravelEstimate returns the duration and distance string for a trip from
// origin to destination in the given mode.
func (s *RouteService) GetTravelEstimate(ctx context.Context, origin, destination string, mode maps.Mode) (time.Duration, string, error) {
	r := &maps.DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Mode:        mode,
		Language:    "en",
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return 0, "", fmt.Errorf("maps api error: %w", err)
	}

	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return 0, "", fmt.Errorf("no route found")
	}

	leg := routes[0].Legs[0]
	return leg.Duration, leg.Distance.HumanReadable, nil
}

// SpotLegs estimates transit time between consecutive places. Legs that fail
// are skipped; at most MaxLegs lookups are made.
func (s *RouteService) SpotLegs(ctx context.Context, places []Place) []Leg {
	var legs []Leg
	for i := 0; i+1 < len(places) && i < MaxLegs; i++ {
		from, to := places[i], places[i+1]
		dur, dist, err := s.GetTravelEstimate(ctx, placeRef(from), placeRef(to), maps.TravelModeTransit)
		if err != nil {
			continue
		}
		legs = append(legs, Leg{From: from.Name, To: to.Name, Duration: dur, Distance: dist})
	}
	return legs
}

// placeRef prefers the stable place id over the free-form address.
func placeRef(p Place) string {
	if p.PlaceID != "" {
		return "place_id:" + p.PlaceID
	}
	return p.Address
}
