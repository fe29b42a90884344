package compass

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ChangeType classifies a history record.
type ChangeType = string

const (
	ChangeCreate ChangeType = "create"
	ChangeUpdate ChangeType = "update"
	ChangeDelete ChangeType = "delete"
)

// ChangedField is one field-level diff inside a history record. For tracked
// status fields Justification carries the reason supplied when the change
// was confirmed.
type ChangedField struct {
	FieldName     string `json:"field_name"`
	OldValue      any    `json:"old_value"`
	NewValue      any    `json:"new_value"`
	Justification string `json:"status_change_justification,omitempty"`
}

// HistoryRecord is an immutable log entry for a change to a catalog object.
// Only the per-field justification may be amended after the fact (a separate
// update against the stored record); old/new values and the change type
// never change.
type HistoryRecord struct {
	bun.BaseModel `bun:"table:history,alias:his"`

	ID            uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	ObjectType    string         `bun:"object_type,notnull" json:"object_type,omitempty"`
	ObjectID      string         `bun:"object_id,notnull" json:"object_id,omitempty"`
	ObjectName    string         `bun:"object_name" json:"object_name,omitempty"`
	ChangeType    ChangeType     `bun:"change_type,notnull" json:"change_type,omitempty"`
	ChangedFields []ChangedField `bun:"changed_fields,type:jsonb" json:"changed_fields,omitempty"`
	ChangeSummary string         `bun:"change_summary" json:"change_summary,omitempty"`
	CreatedBy     string         `bun:"created_by" json:"created_by,omitempty"`
	UpdatedBy     string         `bun:"updated_by" json:"updated_by,omitempty"`
	CreatedAt     *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Field returns the diff entry for the named field, or nil.
func (h *HistoryRecord) Field(name string) *ChangedField {
	for i := range h.ChangedFields {
		if h.ChangedFields[i].FieldName == name {
			return &h.ChangedFields[i]
		}
	}
	return nil
}

// Summary renders a short human readable list of what changed.
func (h *HistoryRecord) Summary() string {
	if h.ChangeSummary != "" {
		return h.ChangeSummary
	}
	names := make([]string, 0, len(h.ChangedFields))
	for _, f := range h.ChangedFields {
		names = append(names, f.FieldName)
	}
	return fmt.Sprintf("%s %s: %s", h.ChangeType, h.ObjectType, strings.Join(names, ", "))
}
