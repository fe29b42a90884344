package compass

import "time"

// RadarEntry positions one approved solution on the radar.
type RadarEntry struct {
	Quadrant int    `json:"quadrant"`
	Ring     int    `json:"ring"`
	Label    string `json:"label"`
	Link     string `json:"link"`
	Active   bool   `json:"active"`
	Moved    int    `json:"moved"`
	// IsNewOrMoved flags solutions created, or whose recommend status
	// changed, within the last 14 days.
	IsNewOrMoved bool `json:"is_new_or_recommend_status_changed"`
}

// RadarQuadrant is one of up to four category-backed quadrants.
type RadarQuadrant struct {
	Name string `json:"name"`
}

// RadarRingInfo names one ring, innermost first.
type RadarRingInfo struct {
	Name string `json:"name"`
}

// RadarData is the full render payload for the tech radar view.
type RadarData struct {
	Date      string          `json:"date"`
	Quadrants []RadarQuadrant `json:"quadrants"`
	Rings     []RadarRingInfo `json:"rings"`
	Entries   []RadarEntry    `json:"entries"`
}

// NewRadarData stamps the payload with the current YYYY-MM date.
func NewRadarData(entries []RadarEntry, quadrants []RadarQuadrant) RadarData {
	rings := make([]RadarRingInfo, 0, 5)
	for _, r := range RadarRings() {
		rings = append(rings, RadarRingInfo{Name: r})
	}
	return RadarData{
		Date:      time.Now().Format("2006-01"),
		Quadrants: quadrants,
		Rings:     rings,
		Entries:   entries,
	}
}
