package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"studyhub-client/internal/domain"
)

// AttemptDraft holds the answers picked on an open quiz attempt. Every pick is
// written through to the quiz store's current quiz and never to the server
// until Submit.
type AttemptDraft struct {
	store *QuizStore

	mu      sync.Mutex
	quiz    domain.Quiz
	answers map[string]string
	closed  bool
}

// NewAttemptDraft starts a draft over the store's current quiz, resuming any
// selections it already carries.
func NewAttemptDraft(store *QuizStore) (*AttemptDraft, error) {
	current := store.Snapshot().Current
	if current == nil || len(current.Questions) == 0 {
		return nil, domain.ErrNoQuiz
	}
	d := &AttemptDraft{
		store:   store,
		quiz:    *current,
		answers: make(map[string]string, len(current.Questions)),
	}
	for _, q := range current.Questions {
		if q.SelectedChoiceID != "" {
			d.answers[q.ID] = q.SelectedChoiceID
		}
	}
	return d, nil
}

// Quiz returns the quiz with the draft selections applied.
func (d *AttemptDraft) Quiz() domain.Quiz {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.quiz.Clone()
}

// Select records choiceID as the answer to questionID, replacing any earlier pick.
func (d *AttemptDraft) Select(questionID, choiceID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return domain.ErrNoQuiz
	}

	idx := -1
	for i, q := range d.quiz.Questions {
		if q.ID == questionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return &domain.ValidationError{Field: "question_id", Message: fmt.Sprintf("unknown question %q", questionID)}
	}
	if !d.quiz.Questions[idx].HasChoice(choiceID) {
		return &domain.ValidationError{Field: "selected_choice_id", Message: fmt.Sprintf("unknown choice %q for question %q", choiceID, questionID)}
	}

	d.answers[questionID] = choiceID
	d.quiz.Questions[idx].SelectedChoiceID = choiceID
	d.store.SelectAnswer(d.quiz.ID, questionID, choiceID)
	return nil
}

// Answer returns the draft choice for a question.
func (d *AttemptDraft) Answer(questionID string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	choice, ok := d.answers[questionID]
	return choice, ok
}

func (d *AttemptDraft) Answered() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.answers)
}

func (d *AttemptDraft) Total() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.quiz.Questions)
}

// Completion is the answered share as a whole percentage.
func (d *AttemptDraft) Completion() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	total := len(d.quiz.Questions)
	if total == 0 {
		return 0
	}
	return (len(d.answers)*100 + total/2) / total
}

// Validate fails with ErrIncompleteAttempt until every question is answered.
func (d *AttemptDraft) Validate() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.validateLocked()
}

func (d *AttemptDraft) validateLocked() error {
	total := len(d.quiz.Questions)
	if len(d.answers) < total {
		return &domain.ValidationError{
			Field:   "responses",
			Message: fmt.Sprintf("%d of %d questions answered", len(d.answers), total),
			Err:     domain.ErrIncompleteAttempt,
		}
	}
	return nil
}

// Payload lists one response per answered question, in question order.
func (d *AttemptDraft) Payload() []domain.AttemptResponse {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.payloadLocked()
}

func (d *AttemptDraft) payloadLocked() []domain.AttemptResponse {
	out := make([]domain.AttemptResponse, 0, len(d.answers))
	for _, q := range d.quiz.Questions {
		if choice, ok := d.answers[q.ID]; ok {
			out = append(out, domain.AttemptResponse{QuestionID: q.ID, SelectedChoiceID: choice})
		}
	}
	return out
}

// Submit sends the complete draft. Once the server has accepted the attempt
// the draft is discarded, including when only the graded result is pending
// (domain.ErrResultPending). Any earlier failure keeps it intact for a retry.
func (d *AttemptDraft) Submit(ctx context.Context) (domain.QuizResult, error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return domain.QuizResult{}, domain.ErrNoQuiz
	}
	if err := d.validateLocked(); err != nil {
		d.mu.Unlock()
		return domain.QuizResult{}, err
	}
	quizID, payload := d.quiz.ID, d.payloadLocked()
	d.mu.Unlock()

	result, err := d.store.Submit(ctx, quizID, payload)
	if err != nil && !errors.Is(err, domain.ErrResultPending) {
		return domain.QuizResult{}, err
	}

	d.mu.Lock()
	d.closed = true
	d.answers = map[string]string{}
	d.mu.Unlock()
	return result, err
}
