package workflow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/radarhq/compass"
	"github.com/radarhq/compass/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedPrompter returns its answers in order. An answer of cancelAnswer
// cancels the prompt.
type scriptedPrompter struct {
	answers []string
	calls   []string
}

const cancelAnswer = "\x00cancel"

func (p *scriptedPrompter) JustifyChange(ctx context.Context, field compass.TrackedField, oldValue, newValue string) (string, error) {
	p.calls = append(p.calls, string(field)+":"+oldValue+"->"+newValue)
	if len(p.answers) == 0 {
		return "", errors.New("prompter exhausted")
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	if answer == cancelAnswer {
		return "", workflow.ErrChangeCancelled
	}
	return answer, nil
}

type fakeCommitter struct {
	err   error
	slug  string
	calls [][]compass.ChangedField
}

func (c *fakeCommitter) CommitStatusChanges(ctx context.Context, slug string, changes []compass.ChangedField) error {
	c.slug = slug
	c.calls = append(c.calls, changes)
	return c.err
}

func redisSolution() *compass.Solution {
	return &compass.Solution{
		Slug:            "redis",
		Name:            "Redis",
		RecommendStatus: compass.RecommendHold,
		ReviewStatus:    compass.ReviewPending,
	}
}

func TestProposeChange(t *testing.T) {
	t.Run("stages a change with its justification", func(t *testing.T) {
		prompter := &scriptedPrompter{answers: []string{"vendor pricing changed"}}
		sess := workflow.NewEditSession(redisSolution(), prompter)

		err := sess.ProposeChange(context.Background(), compass.FieldRecommendStatus, compass.RecommendAdopt)
		require.NoError(t, err)

		assert.Equal(t, compass.RecommendAdopt, sess.Value(compass.FieldRecommendStatus))
		assert.Equal(t, workflow.StatePendingJustification, sess.State(compass.FieldRecommendStatus))

		changes := sess.Changes()
		require.Len(t, changes, 1)
		assert.Equal(t, "recommend_status", changes[0].FieldName)
		assert.Equal(t, compass.RecommendHold, changes[0].OldValue)
		assert.Equal(t, compass.RecommendAdopt, changes[0].NewValue)
		assert.Equal(t, "vendor pricing changed", changes[0].Justification)
	})

	t.Run("chained changes net to one diff with the latest justification", func(t *testing.T) {
		prompter := &scriptedPrompter{answers: []string{"adopting", "re-evaluated vendor"}}
		sess := workflow.NewEditSession(redisSolution(), prompter)

		ctx := context.Background()
		require.NoError(t, sess.ProposeChange(ctx, compass.FieldRecommendStatus, compass.RecommendAdopt))
		require.NoError(t, sess.ProposeChange(ctx, compass.FieldRecommendStatus, compass.RecommendTrial))

		changes := sess.Changes()
		require.Len(t, changes, 1)
		assert.Equal(t, compass.RecommendHold, changes[0].OldValue, "old value stays at the start-of-edit value")
		assert.Equal(t, compass.RecommendTrial, changes[0].NewValue)
		assert.Equal(t, "re-evaluated vendor", changes[0].Justification)

		// The second prompt showed the value the user was looking at.
		assert.Equal(t, "recommend_status:ADOPT->TRIAL", prompter.calls[1])
	})

	t.Run("returning to the starting value drops the staged change without prompting", func(t *testing.T) {
		prompter := &scriptedPrompter{answers: []string{"adopting"}}
		sess := workflow.NewEditSession(redisSolution(), prompter)

		ctx := context.Background()
		require.NoError(t, sess.ProposeChange(ctx, compass.FieldRecommendStatus, compass.RecommendAdopt))
		require.NoError(t, sess.ProposeChange(ctx, compass.FieldRecommendStatus, compass.RecommendHold))

		assert.Empty(t, sess.Changes())
		assert.False(t, sess.HasPending())
		assert.Equal(t, workflow.StateUnchanged, sess.State(compass.FieldRecommendStatus))
		assert.Len(t, prompter.calls, 1, "undo must not prompt")
	})

	t.Run("cancel leaves the displayed value and earlier staged changes alone", func(t *testing.T) {
		prompter := &scriptedPrompter{answers: []string{"adopting", cancelAnswer}}
		sess := workflow.NewEditSession(redisSolution(), prompter)

		ctx := context.Background()
		require.NoError(t, sess.ProposeChange(ctx, compass.FieldRecommendStatus, compass.RecommendAdopt))

		err := sess.ProposeChange(ctx, compass.FieldRecommendStatus, compass.RecommendExit)
		require.Error(t, err)
		assert.True(t, workflow.IsCancelled(err))

		assert.Equal(t, compass.RecommendAdopt, sess.Value(compass.FieldRecommendStatus))
		changes := sess.Changes()
		require.Len(t, changes, 1)
		assert.Equal(t, compass.RecommendAdopt, changes[0].NewValue)
		assert.Equal(t, "adopting", changes[0].Justification)
	})

	t.Run("blank justification prompts again", func(t *testing.T) {
		prompter := &scriptedPrompter{answers: []string{"", "   ", "pilot went well"}}
		sess := workflow.NewEditSession(redisSolution(), prompter)

		err := sess.ProposeChange(context.Background(), compass.FieldRecommendStatus, compass.RecommendTrial)
		require.NoError(t, err)

		assert.Len(t, prompter.calls, 3)
		changes := sess.Changes()
		require.Len(t, changes, 1)
		assert.Equal(t, "pilot went well", changes[0].Justification)
	})

	t.Run("re-selecting the displayed value is a no-op", func(t *testing.T) {
		prompter := &scriptedPrompter{}
		sess := workflow.NewEditSession(redisSolution(), prompter)

		err := sess.ProposeChange(context.Background(), compass.FieldRecommendStatus, compass.RecommendHold)
		require.NoError(t, err)
		assert.Empty(t, prompter.calls)
	})

	t.Run("rejects values outside the field enumeration", func(t *testing.T) {
		sess := workflow.NewEditSession(redisSolution(), &scriptedPrompter{})

		err := sess.ProposeChange(context.Background(), compass.FieldRecommendStatus, "SHIP_IT")
		require.Error(t, err)
		assert.True(t, compass.IsValidation(err))

		err = sess.ProposeChange(context.Background(), "maintainer_name", "bob")
		require.Error(t, err)
		assert.True(t, compass.IsValidation(err))
	})

	t.Run("tracks both fields independently", func(t *testing.T) {
		prompter := &scriptedPrompter{answers: []string{"pilot went well", "security review passed"}}
		sess := workflow.NewEditSession(redisSolution(), prompter)

		ctx := context.Background()
		require.NoError(t, sess.ProposeChange(ctx, compass.FieldRecommendStatus, compass.RecommendTrial))
		require.NoError(t, sess.ProposeChange(ctx, compass.FieldReviewStatus, compass.ReviewApproved))

		changes := sess.Changes()
		require.Len(t, changes, 2)
		assert.Equal(t, "recommend_status", changes[0].FieldName)
		assert.Equal(t, "review_status", changes[1].FieldName)

		justifications := sess.Justifications()
		assert.Equal(t, "pilot went well", justifications["recommend_status"])
		assert.Equal(t, "security review passed", justifications["review_status"])
	})
}

func TestCommit(t *testing.T) {
	t.Run("marks fields committed and rebases the session", func(t *testing.T) {
		prompter := &scriptedPrompter{answers: []string{"pilot went well", "back to hold"}}
		sess := workflow.NewEditSession(redisSolution(), prompter)
		committer := &fakeCommitter{}

		ctx := context.Background()
		require.NoError(t, sess.ProposeChange(ctx, compass.FieldRecommendStatus, compass.RecommendTrial))
		require.NoError(t, sess.Commit(ctx, committer))

		assert.Equal(t, "redis", committer.slug)
		require.Len(t, committer.calls, 1)
		assert.Equal(t, workflow.StateCommitted, sess.State(compass.FieldRecommendStatus))
		assert.False(t, sess.HasPending())

		// A later change diffs against the committed value.
		require.NoError(t, sess.ProposeChange(ctx, compass.FieldRecommendStatus, compass.RecommendHold))
		changes := sess.Changes()
		require.Len(t, changes, 1)
		assert.Equal(t, compass.RecommendTrial, changes[0].OldValue)
	})

	t.Run("retains staged changes when the server rejects the commit", func(t *testing.T) {
		prompter := &scriptedPrompter{answers: []string{"pilot went well"}}
		sess := workflow.NewEditSession(redisSolution(), prompter)
		committer := &fakeCommitter{err: errors.New("gateway timeout")}

		ctx := context.Background()
		require.NoError(t, sess.ProposeChange(ctx, compass.FieldRecommendStatus, compass.RecommendTrial))

		err := sess.Commit(ctx, committer)
		require.Error(t, err)

		assert.True(t, sess.HasPending())
		assert.Equal(t, workflow.StatePendingJustification, sess.State(compass.FieldRecommendStatus))
		assert.Equal(t, compass.RecommendTrial, sess.Value(compass.FieldRecommendStatus))

		// Retry succeeds without re-prompting.
		committer.err = nil
		require.NoError(t, sess.Commit(ctx, committer))
		assert.False(t, sess.HasPending())
		assert.Len(t, prompter.calls, 1)
	})

	t.Run("commit with nothing staged does not call the server", func(t *testing.T) {
		sess := workflow.NewEditSession(redisSolution(), &scriptedPrompter{})
		committer := &fakeCommitter{}

		require.NoError(t, sess.Commit(context.Background(), committer))
		assert.Empty(t, committer.calls)
	})
}

func TestEditJustification(t *testing.T) {
	type editCall struct {
		recordID, fieldName, justification string
	}
	var got *editCall
	editor := workflowHistoryEditorFunc(func(ctx context.Context, recordID, fieldName, justification string) (*compass.HistoryRecord, error) {
		got = &editCall{recordID, fieldName, justification}
		return &compass.HistoryRecord{}, nil
	})

	admin := &compass.User{Username: "root", IsSuperuser: true}
	member := &compass.User{Username: "bob"}

	t.Run("superuser rewrites a justification", func(t *testing.T) {
		got = nil
		_, err := workflow.EditJustification(context.Background(), editor, admin, "h1", "recommend_status", "corrected rationale")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "h1", got.recordID)
		assert.Equal(t, "corrected rationale", got.justification)
	})

	t.Run("non superuser is refused locally", func(t *testing.T) {
		got = nil
		_, err := workflow.EditJustification(context.Background(), editor, member, "h1", "recommend_status", "corrected")
		require.Error(t, err)
		assert.Nil(t, got)
	})

	t.Run("blank justification is refused", func(t *testing.T) {
		_, err := workflow.EditJustification(context.Background(), editor, admin, "h1", "recommend_status", "  ")
		require.Error(t, err)
		assert.True(t, compass.IsValidation(err))
	})

	t.Run("untracked field is refused", func(t *testing.T) {
		_, err := workflow.EditJustification(context.Background(), editor, admin, "h1", "name", "corrected")
		require.Error(t, err)
		assert.True(t, compass.IsValidation(err))
	})
}

type workflowHistoryEditorFunc func(ctx context.Context, recordID, fieldName, justification string) (*compass.HistoryRecord, error)

func (f workflowHistoryEditorFunc) UpdateJustification(ctx context.Context, recordID, fieldName, justification string) (*compass.HistoryRecord, error) {
	return f(ctx, recordID, fieldName, justification)
}
