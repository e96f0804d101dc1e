package usecase

import (
	"context"

	"github.com/runoshun/whatstask/internal/domain"
	"github.com/runoshun/whatstask/internal/usecase/shared"
)

// AddCommentInput contains the parameters for adding a comment.
type AddCommentInput struct {
	TaskID  string // Task ID (required)
	ActorID string // Acting user (required)
	Message string // Comment text (required)
}

// AddCommentOutput contains the result of adding a comment.
type AddCommentOutput struct {
	Activity domain.Activity // The commented record
}

// AddComment is the use case for adding a comment to a task.
// Comments are activity records; the task itself is not modified.
type AddComment struct {
	eng *shared.Engine
}

// NewAddComment creates a new AddComment use case.
func NewAddComment(eng *shared.Engine) *AddComment {
	return &AddComment{eng: eng}
}

// Execute adds a comment to a task.
func (uc *AddComment) Execute(ctx context.Context, in AddCommentInput) (_ *AddCommentOutput, err error) {
	ctx, done := uc.eng.Begin(ctx, "add_comment", in.TaskID)
	defer func() { done(err) }()

	message, err := shared.ValidateMessage(in.Message)
	if err != nil {
		return nil, err
	}
	actor, err := uc.eng.Actor(ctx, in.ActorID)
	if err != nil {
		return nil, err
	}

	task, err := shared.GetLiveTask(ctx, uc.eng.Tasks, in.TaskID)
	if err != nil {
		return nil, err
	}

	activity := domain.Activity{
		CreatedAt:   uc.eng.Clock.Now(),
		TaskID:      task.ID,
		Action:      domain.ActionCommented,
		Notes:       message,
		PerformedBy: actor.ID,
	}
	if err := uc.eng.Record(ctx, activity); err != nil {
		return nil, err
	}

	uc.eng.Finish(ctx, task, domain.ActionCommented, actor.ID)
	return &AddCommentOutput{Activity: activity}, nil
}
