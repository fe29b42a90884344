package compass

// RecommendStatus is the radar-ring placement of a solution.
type RecommendStatus = string

const (
	RecommendAdopt  RecommendStatus = "ADOPT"
	RecommendTrial  RecommendStatus = "TRIAL"
	RecommendAssess RecommendStatus = "ASSESS"
	RecommendHold   RecommendStatus = "HOLD"
	RecommendExit   RecommendStatus = "EXIT"
)

// ReviewStatus is the approval state of a solution. Only superusers may
// change it.
type ReviewStatus = string

const (
	ReviewPending  ReviewStatus = "PENDING"
	ReviewApproved ReviewStatus = "APPROVED"
	ReviewRejected ReviewStatus = "REJECTED"
)

// Stage is the delivery lifecycle stage of a solution.
type Stage = string

const (
	StageDeveloping Stage = "DEVELOPING"
	StageUAT        Stage = "UAT"
	StageProduction Stage = "PRODUCTION"
	StageDeprecated Stage = "DEPRECATED"
	StageRetired    Stage = "RETIRED"
)

// AdoptionLevel describes how widely a solution is used.
type AdoptionLevel = string

const (
	AdoptionPilot      AdoptionLevel = "PILOT"
	AdoptionTeam       AdoptionLevel = "TEAM"
	AdoptionDepartment AdoptionLevel = "DEPARTMENT"
	AdoptionEnterprise AdoptionLevel = "ENTERPRISE"
	AdoptionIndustry   AdoptionLevel = "INDUSTRY"
)

// AdoptionComplexity describes the effort needed to adopt a solution.
type AdoptionComplexity = string

const (
	ComplexityAutomated       AdoptionComplexity = "AUTOMATED"
	ComplexityEasy            AdoptionComplexity = "EASY"
	ComplexitySupportRequired AdoptionComplexity = "SUPPORT_REQUIRED"
)

// ProviderType tells whether a solution is vendor supplied or built in house.
type ProviderType = string

const (
	ProviderVendor   ProviderType = "VENDOR"
	ProviderInternal ProviderType = "INTERNAL"
)

// HeaderChangeJustifications carries the per-field justifications for a
// solution update as a JSON object, e.g.
// {"recommend_status":"re-evaluated vendor"}. Justifications ride in a
// header so they stay out of the resource representation itself.
const HeaderChangeJustifications = "X-Change-Justifications"

// TrackedField names a controlled status field whose changes require a
// justification and are recorded with field-level diffs.
type TrackedField string

const (
	FieldRecommendStatus TrackedField = "recommend_status"
	FieldReviewStatus    TrackedField = "review_status"
)

// TrackedFields lists the controlled fields in their canonical order.
func TrackedFields() []TrackedField {
	return []TrackedField{FieldRecommendStatus, FieldReviewStatus}
}

// IsTrackedField reports whether name is one of the controlled status fields.
func IsTrackedField(name string) bool {
	switch TrackedField(name) {
	case FieldRecommendStatus, FieldReviewStatus:
		return true
	}
	return false
}

var recommendStatuses = map[RecommendStatus]struct{}{
	RecommendAdopt:  {},
	RecommendTrial:  {},
	RecommendAssess: {},
	RecommendHold:   {},
	RecommendExit:   {},
}

var reviewStatuses = map[ReviewStatus]struct{}{
	ReviewPending:  {},
	ReviewApproved: {},
	ReviewRejected: {},
}

// ValidRecommendStatus reports whether s is a known recommend status.
func ValidRecommendStatus(s string) bool {
	_, ok := recommendStatuses[s]
	return ok
}

// ValidReviewStatus reports whether s is a known review status.
func ValidReviewStatus(s string) bool {
	_, ok := reviewStatuses[s]
	return ok
}

// ValidTrackedValue reports whether value belongs to the enumeration of the
// given tracked field.
func ValidTrackedValue(field TrackedField, value string) bool {
	switch field {
	case FieldRecommendStatus:
		return ValidRecommendStatus(value)
	case FieldReviewStatus:
		return ValidReviewStatus(value)
	}
	return false
}

// TrackedValue reads the current value of a tracked field from a solution.
// The second return is false for unknown fields.
func TrackedValue(s *Solution, field TrackedField) (string, bool) {
	if s == nil {
		return "", false
	}
	switch field {
	case FieldRecommendStatus:
		return s.RecommendStatus, true
	case FieldReviewStatus:
		return s.ReviewStatus, true
	}
	return "", false
}

// RadarRing maps a recommend status to its ring index, innermost first
// (ADOPT=0 .. EXIT=4). The second return is false for unknown statuses.
func RadarRing(s RecommendStatus) (int, bool) {
	switch s {
	case RecommendAdopt:
		return 0, true
	case RecommendTrial:
		return 1, true
	case RecommendAssess:
		return 2, true
	case RecommendHold:
		return 3, true
	case RecommendExit:
		return 4, true
	}
	return 0, false
}

// RadarRings returns the ring names in ring order.
func RadarRings() []RecommendStatus {
	return []RecommendStatus{
		RecommendAdopt,
		RecommendTrial,
		RecommendAssess,
		RecommendHold,
		RecommendExit,
	}
}
