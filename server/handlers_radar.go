package server

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/radarhq/compass"
)

// newOrMovedWindow is how long a created or re-ringed solution keeps its
// movement flag on the radar.
const newOrMovedWindow = 14 * 24 * time.Hour

// handleTechRadar projects the approved catalog onto the radar. Quadrants
// come from categories with a non-negative radar_quadrant; solutions in
// categories off the radar are skipped. An optional group query narrows
// the projection to one group's radar.
func (s *Server) handleTechRadar(c *fiber.Ctx) error {
	categories, err := s.catalog.categories(c.Context())
	if err != nil {
		return err
	}

	// quadrant index -> display name, capped at four quadrants.
	quadrantNames := map[int]string{}
	quadrantByCategory := map[string]int{}
	for _, category := range categories {
		if category.RadarQuadrant < 0 || category.RadarQuadrant > 3 {
			continue
		}
		quadrantNames[category.RadarQuadrant] = category.Name
		quadrantByCategory[category.Name] = category.RadarQuadrant
	}

	quadrants := make([]compass.RadarQuadrant, 4)
	for i := range quadrants {
		name := quadrantNames[i]
		if name == "" {
			name = fmt.Sprintf("Quadrant %d", i+1)
		}
		quadrants[i] = compass.RadarQuadrant{Name: name}
	}

	solutions, err := s.solutions.approvedByGroup(c.Context(), c.Query("group"))
	if err != nil {
		return err
	}

	cutoff := time.Now().Add(-newOrMovedWindow)
	entries := make([]compass.RadarEntry, 0, len(solutions))
	for i := range solutions {
		sol := &solutions[i]
		quadrant, onRadar := quadrantByCategory[sol.Category]
		if !onRadar {
			continue
		}
		ring, ok := compass.RadarRing(sol.RecommendStatus)
		if !ok {
			continue
		}
		entries = append(entries, compass.RadarEntry{
			Quadrant:     quadrant,
			Ring:         ring,
			Label:        sol.Name,
			Link:         "/solutions/" + sol.Slug,
			Active:       true,
			IsNewOrMoved: isNewOrMoved(sol, cutoff),
		})
	}

	return c.JSON(compass.OK(compass.NewRadarData(entries, quadrants)))
}

func isNewOrMoved(sol *compass.Solution, cutoff time.Time) bool {
	if sol.CreatedAt != nil && sol.CreatedAt.After(cutoff) {
		return true
	}
	return sol.RecommendStatusUpdatedAt != nil && sol.RecommendStatusUpdatedAt.After(cutoff)
}
