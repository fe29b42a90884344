package compass

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the catalog user model. IsSuperuser gates curation operations
// (status fields, justification edits, site configuration).
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username      string     `bun:"username,notnull,unique" json:"username,omitempty"`
	DisplayName   string     `bun:"display_name" json:"display_name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash" json:"-"`
	IsSuperuser   bool       `bun:"is_superuser" json:"is_superuser"`
	LoggedInAt    *time.Time `bun:"loggedin_at" json:"loggedin_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Solution is a catalog entry. recommend_status and review_status are
// controlled fields: changing either requires a justification and produces
// a history record with the before/after values.
type Solution struct {
	bun.BaseModel `bun:"table:solutions,alias:sol"`

	ID          uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Slug        string    `bun:"slug,notnull,unique" json:"slug,omitempty"`
	Name        string    `bun:"name,notnull" json:"name,omitempty"`
	Brief       string    `bun:"brief,notnull" json:"brief,omitempty"`
	Description string    `bun:"description" json:"description,omitempty"`
	Group       string    `bun:"group_name" json:"group,omitempty"`
	Category    string    `bun:"category" json:"category,omitempty"`
	Logo        string    `bun:"logo" json:"logo,omitempty"`

	Department      string `bun:"department" json:"department,omitempty"`
	Team            string `bun:"team" json:"team,omitempty"`
	TeamEmail       string `bun:"team_email" json:"team_email,omitempty"`
	MaintainerID    string `bun:"maintainer_id" json:"maintainer_id,omitempty"`
	MaintainerName  string `bun:"maintainer_name" json:"maintainer_name,omitempty"`
	MaintainerEmail string `bun:"maintainer_email" json:"maintainer_email,omitempty"`

	OfficialWebsite  string `bun:"official_website" json:"official_website,omitempty"`
	DocumentationURL string `bun:"documentation_url" json:"documentation_url,omitempty"`
	DemoURL          string `bun:"demo_url" json:"demo_url,omitempty"`
	SupportURL       string `bun:"support_url" json:"support_url,omitempty"`
	VendorProductURL string `bun:"vendor_product_url" json:"vendor_product_url,omitempty"`
	HowToUse         string `bun:"how_to_use" json:"how_to_use,omitempty"`
	HowToUseURL      string `bun:"how_to_use_url" json:"how_to_use_url,omitempty"`
	FAQ              string `bun:"faq" json:"faq,omitempty"`
	About            string `bun:"about" json:"about,omitempty"`
	Upskilling       string `bun:"upskilling" json:"upskilling,omitempty"`
	Version          string `bun:"version" json:"version,omitempty"`
	ReplacedBy       string `bun:"replaced_by" json:"replaced_by,omitempty"`

	Tags []string `bun:"tags,type:jsonb" json:"tags,omitempty"`
	Pros []string `bun:"pros,type:jsonb" json:"pros,omitempty"`
	Cons []string `bun:"cons,type:jsonb" json:"cons,omitempty"`

	ReviewStatus       ReviewStatus       `bun:"review_status,notnull" json:"review_status,omitempty"`
	RecommendStatus    RecommendStatus    `bun:"recommend_status,notnull" json:"recommend_status,omitempty"`
	Stage              Stage              `bun:"stage" json:"stage,omitempty"`
	AdoptionLevel      AdoptionLevel      `bun:"adoption_level" json:"adoption_level,omitempty"`
	AdoptionComplexity AdoptionComplexity `bun:"adoption_complexity" json:"adoption_complexity,omitempty"`
	ProviderType       ProviderType       `bun:"provider_type" json:"provider_type,omitempty"`
	AdoptionUserCount  int                `bun:"adoption_user_count" json:"adoption_user_count"`

	Rating      float64 `bun:"rating" json:"rating"`
	RatingCount int     `bun:"rating_count" json:"rating_count"`

	// RecommendStatusUpdatedAt feeds the radar "new or moved" indicator.
	RecommendStatusUpdatedAt *time.Time `bun:"recommend_status_updated_at,nullzero" json:"recommend_status_updated_at,omitempty"`

	CreatedBy string     `bun:"created_by" json:"created_by,omitempty"`
	UpdatedBy string     `bun:"updated_by" json:"updated_by,omitempty"`
	CreatedAt *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Category groups solutions and carries the radar quadrant assignment.
// RadarQuadrant is 0-3 for categories shown on the radar, negative for
// categories excluded from it.
type Category struct {
	bun.BaseModel `bun:"table:categories,alias:cat"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull,unique" json:"name,omitempty"`
	Slug          string     `bun:"slug,notnull,unique" json:"slug,omitempty"`
	Description   string     `bun:"description" json:"description,omitempty"`
	RadarQuadrant int        `bun:"radar_quadrant,notnull" json:"radar_quadrant"`
	UsageCount    int        `bun:"usage_count,scanonly" json:"usage_count,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Group partitions the catalog into separately browsable radars.
type Group struct {
	bun.BaseModel `bun:"table:groups,alias:grp"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull,unique" json:"name,omitempty"`
	Description   string     `bun:"description" json:"description,omitempty"`
	Order         int        `bun:"sort_order" json:"order"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Tag is a free-form label attached to solutions.
type Tag struct {
	bun.BaseModel `bun:"table:tags,alias:tag"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull,unique" json:"name,omitempty"`
	UsageCount    int        `bun:"usage_count,scanonly" json:"usage_count,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// SiteConfig is the singleton site-wide configuration record.
type SiteConfig struct {
	bun.BaseModel `bun:"table:site_config,alias:cfg"`
	ID            uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	SiteName      string         `bun:"site_name" json:"site_name,omitempty"`
	Tagline       string         `bun:"tagline" json:"tagline,omitempty"`
	WelcomeText   string         `bun:"welcome_text" json:"welcome_text,omitempty"`
	ContactEmail  string         `bun:"contact_email" json:"contact_email,omitempty"`
	Features      map[string]any `bun:"features,type:jsonb" json:"features,omitempty"`
	UpdatedBy     string         `bun:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt     *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// LoginResponse is the (non-enveloped) payload returned by POST /auth/login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        *User  `json:"user"`
}
