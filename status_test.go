package compass_test

import (
	"testing"

	"github.com/radarhq/compass"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackedFields(t *testing.T) {
	assert.Equal(t, []compass.TrackedField{
		compass.FieldRecommendStatus,
		compass.FieldReviewStatus,
	}, compass.TrackedFields())

	assert.True(t, compass.IsTrackedField("recommend_status"))
	assert.True(t, compass.IsTrackedField("review_status"))
	assert.False(t, compass.IsTrackedField("name"))
	assert.False(t, compass.IsTrackedField(""))
}

func TestValidTrackedValue(t *testing.T) {
	assert.True(t, compass.ValidTrackedValue(compass.FieldRecommendStatus, "ADOPT"))
	assert.True(t, compass.ValidTrackedValue(compass.FieldRecommendStatus, "EXIT"))
	assert.False(t, compass.ValidTrackedValue(compass.FieldRecommendStatus, "adopt"))
	assert.False(t, compass.ValidTrackedValue(compass.FieldRecommendStatus, "APPROVED"))

	assert.True(t, compass.ValidTrackedValue(compass.FieldReviewStatus, "APPROVED"))
	assert.False(t, compass.ValidTrackedValue(compass.FieldReviewStatus, "ADOPT"))

	assert.False(t, compass.ValidTrackedValue("name", "anything"))
}

func TestTrackedValue(t *testing.T) {
	sol := &compass.Solution{
		RecommendStatus: compass.RecommendTrial,
		ReviewStatus:    compass.ReviewPending,
	}

	v, ok := compass.TrackedValue(sol, compass.FieldRecommendStatus)
	require.True(t, ok)
	assert.Equal(t, compass.RecommendTrial, v)

	v, ok = compass.TrackedValue(sol, compass.FieldReviewStatus)
	require.True(t, ok)
	assert.Equal(t, compass.ReviewPending, v)

	_, ok = compass.TrackedValue(sol, "name")
	assert.False(t, ok)

	_, ok = compass.TrackedValue(nil, compass.FieldRecommendStatus)
	assert.False(t, ok)
}

func TestRadarRing(t *testing.T) {
	// Ring order drives the radar rendering: ADOPT innermost.
	expect := map[compass.RecommendStatus]int{
		compass.RecommendAdopt:  0,
		compass.RecommendTrial:  1,
		compass.RecommendAssess: 2,
		compass.RecommendHold:   3,
		compass.RecommendExit:   4,
	}
	for status, want := range expect {
		ring, ok := compass.RadarRing(status)
		require.True(t, ok, status)
		assert.Equal(t, want, ring, status)
	}

	_, ok := compass.RadarRing("PENDING")
	assert.False(t, ok)

	assert.Len(t, compass.RadarRings(), 5)
}
