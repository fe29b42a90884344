package compass

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// SolutionInput is the payload for creating a solution. Status fields are
// intentionally absent: new entries always start as PENDING/ASSESS and move
// through the justification-gated workflow afterwards.
type SolutionInput struct {
	Name        string `json:"name"`
	Brief       string `json:"brief"`
	Description string `json:"description"`
	Group       string `json:"group"`
	Category    string `json:"category"`
	Logo        string `json:"logo"`

	Department      string `json:"department"`
	Team            string `json:"team"`
	TeamEmail       string `json:"team_email"`
	MaintainerID    string `json:"maintainer_id"`
	MaintainerName  string `json:"maintainer_name"`
	MaintainerEmail string `json:"maintainer_email"`

	OfficialWebsite  string `json:"official_website"`
	DocumentationURL string `json:"documentation_url"`
	DemoURL          string `json:"demo_url"`
	SupportURL       string `json:"support_url"`
	VendorProductURL string `json:"vendor_product_url"`
	HowToUse         string `json:"how_to_use"`
	HowToUseURL      string `json:"how_to_use_url"`
	FAQ              string `json:"faq"`
	About            string `json:"about"`
	Upskilling       string `json:"upskilling"`
	Version          string `json:"version"`

	Tags []string `json:"tags"`
	Pros []string `json:"pros"`
	Cons []string `json:"cons"`

	Stage              Stage              `json:"stage"`
	AdoptionLevel      AdoptionLevel      `json:"adoption_level"`
	AdoptionComplexity AdoptionComplexity `json:"adoption_complexity"`
	ProviderType       ProviderType       `json:"provider_type"`
	AdoptionUserCount  int                `json:"adoption_user_count"`
}

// Validate runs validation rules.
func (p SolutionInput) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.Brief, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.Description, validation.Required),
		validation.Field(&p.Department, validation.Required),
		validation.Field(&p.Team, validation.Required),
		validation.Field(&p.TeamEmail, is.Email),
		validation.Field(&p.MaintainerEmail, is.Email),
		validation.Field(&p.Stage, validation.In(
			StageDeveloping, StageUAT, StageProduction, StageDeprecated, StageRetired,
		)),
		validation.Field(&p.AdoptionLevel, validation.In(
			AdoptionPilot, AdoptionTeam, AdoptionDepartment, AdoptionEnterprise, AdoptionIndustry,
		)),
		validation.Field(&p.AdoptionComplexity, validation.In(
			ComplexityAutomated, ComplexityEasy, ComplexitySupportRequired,
		)),
		validation.Field(&p.ProviderType, validation.In(ProviderVendor, ProviderInternal)),
		validation.Field(&p.AdoptionUserCount, validation.Min(0)),
	)
}

// SolutionUpdate is a partial update: nil fields are left untouched.
// RecommendStatus and ReviewStatus are controlled fields: the server
// rejects them for non superusers and requires a justification header when
// either actually changes.
type SolutionUpdate struct {
	Name        *string `json:"name,omitempty"`
	Brief       *string `json:"brief,omitempty"`
	Description *string `json:"description,omitempty"`
	Group       *string `json:"group,omitempty"`
	Category    *string `json:"category,omitempty"`
	Logo        *string `json:"logo,omitempty"`

	Department      *string `json:"department,omitempty"`
	Team            *string `json:"team,omitempty"`
	TeamEmail       *string `json:"team_email,omitempty"`
	MaintainerID    *string `json:"maintainer_id,omitempty"`
	MaintainerName  *string `json:"maintainer_name,omitempty"`
	MaintainerEmail *string `json:"maintainer_email,omitempty"`

	OfficialWebsite  *string `json:"official_website,omitempty"`
	DocumentationURL *string `json:"documentation_url,omitempty"`
	DemoURL          *string `json:"demo_url,omitempty"`
	SupportURL       *string `json:"support_url,omitempty"`
	VendorProductURL *string `json:"vendor_product_url,omitempty"`
	HowToUse         *string `json:"how_to_use,omitempty"`
	HowToUseURL      *string `json:"how_to_use_url,omitempty"`
	FAQ              *string `json:"faq,omitempty"`
	About            *string `json:"about,omitempty"`
	Upskilling       *string `json:"upskilling,omitempty"`
	Version          *string `json:"version,omitempty"`
	ReplacedBy       *string `json:"replaced_by,omitempty"`

	Tags *[]string `json:"tags,omitempty"`
	Pros *[]string `json:"pros,omitempty"`
	Cons *[]string `json:"cons,omitempty"`

	Stage              *Stage              `json:"stage,omitempty"`
	AdoptionLevel      *AdoptionLevel      `json:"adoption_level,omitempty"`
	AdoptionComplexity *AdoptionComplexity `json:"adoption_complexity,omitempty"`
	ProviderType       *ProviderType       `json:"provider_type,omitempty"`
	AdoptionUserCount  *int                `json:"adoption_user_count,omitempty"`

	RecommendStatus *RecommendStatus `json:"recommend_status,omitempty"`
	ReviewStatus    *ReviewStatus    `json:"review_status,omitempty"`
}

// Validate runs validation rules on the fields that are present.
func (p SolutionUpdate) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&p.Brief, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&p.RecommendStatus, validation.By(nilOrEnum(FieldRecommendStatus))),
		validation.Field(&p.ReviewStatus, validation.By(nilOrEnum(FieldReviewStatus))),
	)
}

// HasStatusChange reports whether the update touches a tracked field.
func (p SolutionUpdate) HasStatusChange() bool {
	return p.RecommendStatus != nil || p.ReviewStatus != nil
}

func nilOrEnum(field TrackedField) validation.RuleFunc {
	return func(value any) error {
		s, ok := value.(*string)
		if !ok || s == nil {
			return nil
		}
		if !ValidTrackedValue(field, *s) {
			return ErrInvalidStatusValue
		}
		return nil
	}
}

// JustificationEdit is the payload for amending a stored justification on
// an existing history record.
type JustificationEdit struct {
	FieldName     string `json:"field_name"`
	Justification string `json:"justification"`
}

// Validate runs validation rules.
func (p JustificationEdit) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.FieldName, validation.Required, validation.By(trackedFieldRule)),
		validation.Field(&p.Justification, validation.Required),
	)
}

func trackedFieldRule(value any) error {
	s, _ := value.(string)
	if !IsTrackedField(s) {
		return fmt.Errorf("must be a controlled status field")
	}
	return nil
}

// CategoryInput is the payload for creating a category. RadarQuadrant is a
// pointer so that quadrant 0 can be told apart from an omitted field; an
// omitted quadrant keeps the category off the radar.
type CategoryInput struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	RadarQuadrant *int   `json:"radar_quadrant"`
}

// Validate runs validation rules.
func (p CategoryInput) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 100)),
	)
}
