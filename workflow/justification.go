package workflow

import (
	"context"

	"github.com/radarhq/compass"
)

// HistoryEditor rewrites the justification stored on one field of a
// history record. *client.HistoryService satisfies it.
type HistoryEditor interface {
	UpdateJustification(ctx context.Context, recordID, fieldName, justification string) (*compass.HistoryRecord, error)
}

// EditJustification replaces the justification recorded for a tracked
// field on an existing history record. Only superusers may rewrite
// history; the check here is a fast local gate, the server enforces the
// same rule.
func EditJustification(ctx context.Context, editor HistoryEditor, actor *compass.User, recordID, fieldName, justification string) (*compass.HistoryRecord, error) {
	if actor == nil || !actor.IsSuperuser {
		return nil, compass.ErrForbidden.WithMetadata(map[string]any{
			"record_id": recordID,
		})
	}
	if !compass.IsTrackedField(fieldName) {
		return nil, compass.ErrInvalidStatusValue.WithMetadata(map[string]any{
			"field": fieldName,
		})
	}
	if blankJustification(justification) {
		return nil, compass.ErrJustificationRequired.WithMetadata(map[string]any{
			"field": fieldName,
		})
	}
	return editor.UpdateJustification(ctx, recordID, fieldName, justification)
}
