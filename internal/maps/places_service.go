package maps

import (
	"context"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"
)

const (
	// MinRating filters out low-quality results.
	MinRating = 4.0
	// MaxSpots caps how many places are returned per lookup.
	MaxSpots = 5
)

// Place represents a simplified location result.
type Place struct {
	Name             string  `json:"name"`
	Address          string  `json:"address"`
	Rating           float32 `json:"rating"`
	PlaceID          string  `json:"placeId"`
	UserRatingsTotal int     `json:"userRatingsTotal"`
}

// Label renders a place for inclusion in a prompt.
func (p Place) Label() string {
	return fmt.Sprintf("%s (rating %.1f, %d reviews)", p.Name, p.Rating, p.UserRatingsTotal)
}

type textSearcher interface {
	TextSearch(ctx context.Context, r *maps.TextSearchRequest) (maps.PlacesSearchResponse, error)
}

// PlacesService handles interactions with Google Places API.
type PlacesService struct {
	client textSearcher
}

// NewPlacesService creates a new PlacesService with the given API Key.
func NewPlacesService(apiKey string) (*PlacesService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &PlacesService{client: client}, nil
}

// Results naming these are businesses, not places to shoot.
var excludedKeywords = []string{
	"Photo Studio", "Photography Studio", "Camera Store", "Camera Shop",
	"Hotel", "Hostel", "Rental", "Tour Agency", "Travel Agency",
}

// photoQuery builds the text-search query for a destination and interests.
func photoQuery(destination string, interests []string) string {
	subject := "photography spots"
	if len(interests) > 0 {
		subject = strings.Join(interests, " ") + " " + subject
	}
	return fmt.Sprintf("%s in %s", subject, destination)
}

// PhotoSpots returns up to MaxSpots highly rated places for photographing
// interests at destination, in result order with duplicates removed.
func (s *PlacesService) PhotoSpots(ctx context.Context, destination string, interests []string) ([]Place, error) {
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return nil, nil
	}

	resp, err := s.client.TextSearch(ctx, &maps.TextSearchRequest{
		Query:    photoQuery(destination, interests),
		Language: "en",
	})
	if err != nil {
		return nil, fmt.Errorf("places api error: %w", err)
	}

	seen := make(map[string]bool)
	var results []Place
	for _, result := range resp.Results {
		if result.Rating < MinRating {
			continue
		}
		if isExcluded(result.Name) {
			continue
		}
		// Results without a place id cannot be deduplicated; keep them.
		if result.PlaceID != "" {
			if seen[result.PlaceID] {
				continue
			}
			seen[result.PlaceID] = true
		}

		results = append(results, Place{
			Name:             result.Name,
			Address:          result.FormattedAddress,
			Rating:           result.Rating,
			PlaceID:          result.PlaceID,
			UserRatingsTotal: result.UserRatingsTotal,
		})
		if len(results) >= MaxSpots {
			break
		}
	}
	return results, nil
}

func isExcluded(name string) bool {
	for _, kw := range excludedKeywords {
		if containsIgnoreCase(name, kw) {
			return true
		}
	}
	return false
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
