package quiz

import (
	"context"

	"github.com/dermatch/dermatch-go/internal/domain"
	apperrors "github.com/dermatch/dermatch-go/internal/pkg/errors"
)

// AnswerSource resolves the caller's choices for one catalog question.
// Returning ok=false leaves the question unanswered.
type AnswerSource interface {
	Choices(q domain.Question) (choiceIDs []string, ok bool)
}

// AnswerMap is a fixed question-id → choice-ids source.
type AnswerMap map[string][]string

func (m AnswerMap) Choices(q domain.Question) ([]string, bool) {
	ids, ok := m[q.ID]
	return ids, ok
}

// Run drives one full attempt: start, submit every answered question in
// catalog order awaiting each acknowledgment, then finalize. The plan is
// validated first: a required question with no answer, or multiple choices
// for a single-select question, fails with validation before any network
// call is made.
func (o *Orchestrator) Run(ctx context.Context, questions []domain.Question, source AnswerSource) (domain.FinalizeResult, error) {
	if source == nil {
		return domain.FinalizeResult{}, apperrors.New(apperrors.KindValidation, "answer source required")
	}

	type plannedAnswer struct {
		questionID string
		choiceIDs  []string
	}
	plan := make([]plannedAnswer, 0, len(questions))
	for _, q := range questions {
		choiceIDs, ok := source.Choices(q)
		if !ok || len(choiceIDs) == 0 {
			if q.Required {
				return domain.FinalizeResult{}, apperrors.Newf(apperrors.KindValidation, "question %q is required", q.ID)
			}
			continue
		}
		if !q.IsMulti && len(choiceIDs) > 1 {
			return domain.FinalizeResult{}, apperrors.Newf(apperrors.KindValidation, "question %q accepts a single choice", q.ID)
		}
		plan = append(plan, plannedAnswer{questionID: q.ID, choiceIDs: choiceIDs})
	}

	if _, err := o.Start(ctx); err != nil {
		return domain.FinalizeResult{}, err
	}
	for _, p := range plan {
		if err := o.SubmitAnswer(ctx, p.questionID, p.choiceIDs); err != nil {
			return domain.FinalizeResult{}, err
		}
	}
	return o.Finalize(ctx)
}
