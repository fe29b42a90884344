package server

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/gosimple/slug"
	"github.com/radarhq/compass"
)

const objectTypeSolution = "solution"

func (s *Server) handleListSolutions(c *fiber.Ctx) error {
	filter := solutionFilter{
		skip:     c.QueryInt("skip", 0),
		limit:    c.QueryInt("limit", defaultPageSize),
		category: c.Query("category"),
		group:    c.Query("group"),
		review:   c.Query("review_status"),
	}
	solutions, total, err := s.solutions.list(c.Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(compass.OKList(solutions, total, filter.skip, filter.limit))
}

func (s *Server) handleMySolutions(c *fiber.Ctx) error {
	filter := solutionFilter{
		skip:      c.QueryInt("skip", 0),
		limit:     c.QueryInt("limit", defaultPageSize),
		createdBy: actingUser(c).Username,
	}
	solutions, total, err := s.solutions.list(c.Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(compass.OKList(solutions, total, filter.skip, filter.limit))
}

func (s *Server) handleGetSolution(c *fiber.Ctx) error {
	solution, err := s.solutions.bySlug(c.Context(), c.Params("slug"))
	if err != nil {
		return err
	}
	return c.JSON(compass.OK(solution))
}

// handleCreateSolution registers a new catalog entry. Status fields are
// not part of the payload: every entry starts PENDING review in the
// ASSESS ring and moves through the justification-gated workflow from
// there.
func (s *Server) handleCreateSolution(c *fiber.Ctx) error {
	var input compass.SolutionInput
	if err := c.BodyParser(&input); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "malformed solution payload")
	}
	if err := input.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, err.Error())
	}

	actor := actingUser(c)
	now := time.Now()
	solution := &compass.Solution{
		Slug:        slug.Make(input.Name),
		Name:        input.Name,
		Brief:       input.Brief,
		Description: input.Description,
		Group:       input.Group,
		Category:    input.Category,
		Logo:        input.Logo,

		Department:      input.Department,
		Team:            input.Team,
		TeamEmail:       input.TeamEmail,
		MaintainerID:    input.MaintainerID,
		MaintainerName:  input.MaintainerName,
		MaintainerEmail: input.MaintainerEmail,

		OfficialWebsite:  input.OfficialWebsite,
		DocumentationURL: input.DocumentationURL,
		DemoURL:          input.DemoURL,
		SupportURL:       input.SupportURL,
		VendorProductURL: input.VendorProductURL,
		HowToUse:         input.HowToUse,
		HowToUseURL:      input.HowToUseURL,
		FAQ:              input.FAQ,
		About:            input.About,
		Upskilling:       input.Upskilling,
		Version:          input.Version,

		Tags: input.Tags,
		Pros: input.Pros,
		Cons: input.Cons,

		ReviewStatus:       compass.ReviewPending,
		RecommendStatus:    compass.RecommendAssess,
		Stage:              input.Stage,
		AdoptionLevel:      input.AdoptionLevel,
		AdoptionComplexity: input.AdoptionComplexity,
		ProviderType:       input.ProviderType,
		AdoptionUserCount:  input.AdoptionUserCount,

		RecommendStatusUpdatedAt: &now,
		CreatedBy:                actor.Username,
		UpdatedBy:                actor.Username,
	}

	if err := s.solutions.create(c.Context(), solution); err != nil {
		return err
	}

	s.recordHistory(c, &compass.HistoryRecord{
		ObjectType:    objectTypeSolution,
		ObjectID:      solution.Slug,
		ObjectName:    solution.Name,
		ChangeType:    compass.ChangeCreate,
		ChangeSummary: fmt.Sprintf("created %s", solution.Name),
		CreatedBy:     actor.Username,
	})
	return c.Status(fiber.StatusCreated).JSON(compass.OK(solution))
}

// handleUpdateSolution applies a partial update. Tracked status fields are
// superuser-only and each one that actually changes must be justified via
// the justification header; the resulting diff plus justifications go into
// a history record.
func (s *Server) handleUpdateSolution(c *fiber.Ctx) error {
	var update compass.SolutionUpdate
	if err := c.BodyParser(&update); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "malformed solution payload")
	}
	if err := update.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, err.Error())
	}

	actor := actingUser(c)
	if update.HasStatusChange() && !actor.IsSuperuser {
		return compass.ErrForbidden
	}

	solution, err := s.solutions.bySlug(c.Context(), c.Params("slug"))
	if err != nil {
		return err
	}

	justifications, err := parseJustifications(c)
	if err != nil {
		return err
	}

	changes := applyUpdate(solution, &update)
	if len(changes) == 0 {
		return c.JSON(compass.OK(solution))
	}

	for i := range changes {
		if !compass.IsTrackedField(changes[i].FieldName) {
			continue
		}
		justification := strings.TrimSpace(justifications[changes[i].FieldName])
		if justification == "" {
			return compass.ErrJustificationRequired.WithMetadata(map[string]any{
				"field": changes[i].FieldName,
			})
		}
		changes[i].Justification = justification
	}

	solution.UpdatedBy = actor.Username
	if err := s.solutions.update(c.Context(), solution); err != nil {
		return err
	}

	s.recordHistory(c, &compass.HistoryRecord{
		ObjectType:    objectTypeSolution,
		ObjectID:      solution.Slug,
		ObjectName:    solution.Name,
		ChangeType:    compass.ChangeUpdate,
		ChangedFields: changes,
		CreatedBy:     actor.Username,
	})
	return c.JSON(compass.OK(solution))
}

func (s *Server) handleDeleteSolution(c *fiber.Ctx) error {
	actor := actingUser(c)
	solution, err := s.solutions.bySlug(c.Context(), c.Params("slug"))
	if err != nil {
		return err
	}
	if !actor.IsSuperuser && solution.CreatedBy != actor.Username {
		return compass.ErrForbidden
	}

	if err := s.solutions.delete(c.Context(), solution.Slug); err != nil {
		return err
	}

	s.recordHistory(c, &compass.HistoryRecord{
		ObjectType:    objectTypeSolution,
		ObjectID:      solution.Slug,
		ObjectName:    solution.Name,
		ChangeType:    compass.ChangeDelete,
		ChangeSummary: fmt.Sprintf("deleted %s", solution.Name),
		CreatedBy:     actor.Username,
	})
	return c.JSON(compass.OK(solution))
}

// recordHistory writes the audit record. History is best effort relative
// to the change itself, which has already been persisted.
func (s *Server) recordHistory(c *fiber.Ctx, rec *compass.HistoryRecord) {
	if err := s.history.record(c.Context(), rec); err != nil {
		s.log.Error("server: could not record history for %s %s: %v", rec.ObjectType, rec.ObjectID, err)
	}
}

// parseJustifications reads the justification header, a JSON object keyed
// by field name.
func parseJustifications(c *fiber.Ctx) (map[string]string, error) {
	header := c.Get(compass.HeaderChangeJustifications)
	if header == "" {
		return map[string]string{}, nil
	}
	var justifications map[string]string
	if err := json.Unmarshal([]byte(header), &justifications); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "malformed justification header")
	}
	return justifications, nil
}

// applyUpdate copies the non-nil fields of update onto solution and
// returns the field-level diff of what actually changed. A recommend
// status change also bumps the radar movement timestamp.
func applyUpdate(solution *compass.Solution, update *compass.SolutionUpdate) []compass.ChangedField {
	var changes []compass.ChangedField

	setString := func(name string, dst *string, src *string) {
		if src == nil || *src == *dst {
			return
		}
		changes = append(changes, compass.ChangedField{
			FieldName: name,
			OldValue:  *dst,
			NewValue:  *src,
		})
		*dst = *src
	}
	setStrings := func(name string, dst *[]string, src *[]string) {
		if src == nil || equalStrings(*dst, *src) {
			return
		}
		changes = append(changes, compass.ChangedField{
			FieldName: name,
			OldValue:  *dst,
			NewValue:  *src,
		})
		*dst = *src
	}
	setInt := func(name string, dst *int, src *int) {
		if src == nil || *src == *dst {
			return
		}
		changes = append(changes, compass.ChangedField{
			FieldName: name,
			OldValue:  *dst,
			NewValue:  *src,
		})
		*dst = *src
	}

	setString("name", &solution.Name, update.Name)
	setString("brief", &solution.Brief, update.Brief)
	setString("description", &solution.Description, update.Description)
	setString("group", &solution.Group, update.Group)
	setString("category", &solution.Category, update.Category)
	setString("logo", &solution.Logo, update.Logo)

	setString("department", &solution.Department, update.Department)
	setString("team", &solution.Team, update.Team)
	setString("team_email", &solution.TeamEmail, update.TeamEmail)
	setString("maintainer_id", &solution.MaintainerID, update.MaintainerID)
	setString("maintainer_name", &solution.MaintainerName, update.MaintainerName)
	setString("maintainer_email", &solution.MaintainerEmail, update.MaintainerEmail)

	setString("official_website", &solution.OfficialWebsite, update.OfficialWebsite)
	setString("documentation_url", &solution.DocumentationURL, update.DocumentationURL)
	setString("demo_url", &solution.DemoURL, update.DemoURL)
	setString("support_url", &solution.SupportURL, update.SupportURL)
	setString("vendor_product_url", &solution.VendorProductURL, update.VendorProductURL)
	setString("how_to_use", &solution.HowToUse, update.HowToUse)
	setString("how_to_use_url", &solution.HowToUseURL, update.HowToUseURL)
	setString("faq", &solution.FAQ, update.FAQ)
	setString("about", &solution.About, update.About)
	setString("upskilling", &solution.Upskilling, update.Upskilling)
	setString("version", &solution.Version, update.Version)
	setString("replaced_by", &solution.ReplacedBy, update.ReplacedBy)

	setStrings("tags", &solution.Tags, update.Tags)
	setStrings("pros", &solution.Pros, update.Pros)
	setStrings("cons", &solution.Cons, update.Cons)

	setString("stage", &solution.Stage, update.Stage)
	setString("adoption_level", &solution.AdoptionLevel, update.AdoptionLevel)
	setString("adoption_complexity", &solution.AdoptionComplexity, update.AdoptionComplexity)
	setString("provider_type", &solution.ProviderType, update.ProviderType)
	setInt("adoption_user_count", &solution.AdoptionUserCount, update.AdoptionUserCount)

	before := solution.RecommendStatus
	setString(string(compass.FieldRecommendStatus), &solution.RecommendStatus, update.RecommendStatus)
	if solution.RecommendStatus != before {
		now := time.Now()
		solution.RecommendStatusUpdatedAt = &now
	}
	setString(string(compass.FieldReviewStatus), &solution.ReviewStatus, update.ReviewStatus)

	return changes
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
