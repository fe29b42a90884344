package server

import (
	"context"
	"database/sql"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/radarhq/compass"
	"github.com/uptrace/bun"
)

// pagination defaults shared by the list endpoints.
const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func clampPage(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return skip, limit
}

type userRepo struct {
	db *bun.DB
}

func (r *userRepo) byUsername(ctx context.Context, username string) (*compass.User, error) {
	user := new(compass.User)
	err := r.db.NewSelect().Model(user).
		Where("username = ?", username).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, compass.ErrNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load user")
	}
	return user, nil
}

func (r *userRepo) byID(ctx context.Context, id string) (*compass.User, error) {
	user := new(compass.User)
	err := r.db.NewSelect().Model(user).
		Where("usr.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, compass.ErrNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load user")
	}
	return user, nil
}

func (r *userRepo) create(ctx context.Context, user *compass.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if _, err := r.db.NewInsert().Model(user).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return compass.ErrDuplicateName.WithMetadata(map[string]any{
				"username": user.Username,
			})
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create user")
	}
	return nil
}

func (r *userRepo) touchLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.NewUpdate().Model((*compass.User)(nil)).
		Set("loggedin_at = ?", at).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to record login time")
	}
	return nil
}

// solutionFilter narrows the solution list endpoints.
type solutionFilter struct {
	skip      int
	limit     int
	category  string
	group     string
	review    string
	createdBy string
}

type solutionRepo struct {
	db *bun.DB
}

func (r *solutionRepo) list(ctx context.Context, f solutionFilter) ([]compass.Solution, int, error) {
	f.skip, f.limit = clampPage(f.skip, f.limit)

	var solutions []compass.Solution
	q := r.db.NewSelect().Model(&solutions)
	if f.category != "" {
		q = q.Where("category = ?", f.category)
	}
	if f.group != "" {
		q = q.Where("group_name = ?", f.group)
	}
	if f.review != "" {
		q = q.Where("review_status = ?", f.review)
	}
	if f.createdBy != "" {
		q = q.Where("created_by = ?", f.createdBy)
	}

	total, err := q.Order("name ASC").Offset(f.skip).Limit(f.limit).ScanAndCount(ctx)
	if err != nil {
		return nil, 0, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list solutions")
	}
	return solutions, total, nil
}

func (r *solutionRepo) bySlug(ctx context.Context, slug string) (*compass.Solution, error) {
	solution := new(compass.Solution)
	err := r.db.NewSelect().Model(solution).
		Where("slug = ?", slug).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, compass.ErrNotFound.WithMetadata(map[string]any{"slug": slug})
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load solution")
	}
	return solution, nil
}

func (r *solutionRepo) create(ctx context.Context, solution *compass.Solution) error {
	if solution.ID == uuid.Nil {
		solution.ID = uuid.New()
	}
	if _, err := r.db.NewInsert().Model(solution).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return compass.ErrDuplicateName.WithMetadata(map[string]any{
				"name": solution.Name,
				"slug": solution.Slug,
			})
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create solution")
	}
	return nil
}

func (r *solutionRepo) update(ctx context.Context, solution *compass.Solution) error {
	now := time.Now()
	solution.UpdatedAt = &now
	_, err := r.db.NewUpdate().Model(solution).WherePK().Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update solution")
	}
	return nil
}

func (r *solutionRepo) delete(ctx context.Context, slug string) error {
	res, err := r.db.NewDelete().Model((*compass.Solution)(nil)).
		Where("slug = ?", slug).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete solution")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return compass.ErrNotFound.WithMetadata(map[string]any{"slug": slug})
	}
	return nil
}

// approvedByGroup returns the approved catalog entries feeding the radar.
func (r *solutionRepo) approvedByGroup(ctx context.Context, group string) ([]compass.Solution, error) {
	var solutions []compass.Solution
	q := r.db.NewSelect().Model(&solutions).
		Where("review_status = ?", compass.ReviewApproved)
	if group != "" {
		q = q.Where("group_name = ?", group)
	}
	if err := q.Order("name ASC").Scan(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load radar solutions")
	}
	return solutions, nil
}

type historyRepo struct {
	db *bun.DB
}

func (r *historyRepo) record(ctx context.Context, rec *compass.HistoryRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if _, err := r.db.NewInsert().Model(rec).Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to record history")
	}
	return nil
}

// forObject pages the history of one object, newest first. When fields is
// non-empty only records touching at least one of the named fields count.
// The field filter applies to the JSON diff payload, so it is evaluated
// here rather than pushed into SQL.
func (r *historyRepo) forObject(ctx context.Context, objectType, objectID string, fields []string, skip, limit int) ([]compass.HistoryRecord, int, error) {
	skip, limit = clampPage(skip, limit)

	var records []compass.HistoryRecord
	err := r.db.NewSelect().Model(&records).
		Where("object_type = ?", objectType).
		Where("object_id = ?", objectID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, 0, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load history")
	}

	if len(fields) > 0 {
		filtered := records[:0]
		for _, rec := range records {
			if touchesAny(&rec, fields) {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}

	total := len(records)
	if skip >= total {
		return []compass.HistoryRecord{}, total, nil
	}
	end := skip + limit
	if end > total {
		end = total
	}
	return records[skip:end], total, nil
}

func touchesAny(rec *compass.HistoryRecord, fields []string) bool {
	for _, name := range fields {
		if rec.Field(name) != nil {
			return true
		}
	}
	return false
}

func (r *historyRepo) byID(ctx context.Context, id string) (*compass.HistoryRecord, error) {
	rec := new(compass.HistoryRecord)
	err := r.db.NewSelect().Model(rec).
		Where("his.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, compass.ErrNotFound.WithMetadata(map[string]any{"record_id": id})
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load history record")
	}
	return rec, nil
}

// updateJustification rewrites the justification on one field diff. The
// old/new values and everything else on the record stay as written.
func (r *historyRepo) updateJustification(ctx context.Context, id, fieldName, justification, updatedBy string) (*compass.HistoryRecord, error) {
	rec, err := r.byID(ctx, id)
	if err != nil {
		return nil, err
	}

	field := rec.Field(fieldName)
	if field == nil {
		return nil, compass.ErrNotFound.WithMetadata(map[string]any{
			"record_id": id,
			"field":     fieldName,
		})
	}
	field.Justification = justification

	now := time.Now()
	rec.UpdatedBy = updatedBy
	rec.UpdatedAt = &now

	_, err = r.db.NewUpdate().Model(rec).
		Column("changed_fields", "updated_by", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update justification")
	}
	return rec, nil
}

// isUniqueViolation detects unique constraint failures across the sqlite
// driver's error shapes.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed") && strings.Contains(msg, "unique")
}
