package app

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"studyhub-client/internal/domain"
	"studyhub-client/internal/gateway"
)

// QuizGateway is the remote surface the quiz store needs.
type QuizGateway interface {
	ListMine(ctx context.Context) ([]domain.Quiz, error)
	Get(ctx context.Context, quizID string) (domain.Quiz, error)
	Create(ctx context.Context, form gateway.QuizForm) (string, error)
	Delete(ctx context.Context, quizID string) error
	SubmitAttempt(ctx context.Context, quizID string, responses []domain.AttemptResponse) (domain.QuizResult, error)
	ListAttempts(ctx context.Context, quizID string) ([]domain.AttemptSummary, error)
	GetAttempt(ctx context.Context, attemptID string) (domain.QuizResult, error)
}

// QuizState adds the attempts listing to the generic state.
type QuizState struct {
	State[domain.Quiz, domain.QuizResult]
	Attempts []domain.AttemptSummary
}

// QuizStore holds my quizzes, the quiz being viewed or attempted, the last
// graded result and the attempts of one quiz.
type QuizStore struct {
	*Store[domain.Quiz, domain.QuizResult]
	gateway QuizGateway

	attemptsMu sync.RWMutex
	attempts   []domain.AttemptSummary
}

func NewQuizStore(gw QuizGateway, logger *zap.Logger) *QuizStore {
	return &QuizStore{
		Store:   NewStore[domain.Quiz, domain.QuizResult](quizID, domain.Quiz.Clone, logger),
		gateway: gw,
	}
}

func quizID(q domain.Quiz) string { return q.ID }

// State returns the generic snapshot plus the attempts listing.
func (s *QuizStore) State() QuizState {
	return QuizState{State: s.Snapshot(), Attempts: s.attemptsSnapshot()}
}

// Watch is Store.Watch with the attempts listing attached to every snapshot.
// The listing is read when a snapshot is forwarded, so it is never older than
// the change that produced the snapshot.
func (s *QuizStore) Watch() (<-chan QuizState, func()) {
	in, stopInner := s.Store.Watch()
	out := make(chan QuizState, 1)
	done := make(chan struct{})

	go func() {
		defer close(out)
		for st := range in {
			qs := QuizState{State: st, Attempts: s.attemptsSnapshot()}
			select {
			case out <- qs:
			case <-done:
				return
			default:
				select {
				case <-out:
				default:
				}
				select {
				case out <- qs:
				case <-done:
					return
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			stopInner()
		})
	}
	return out, cancel
}

func (s *QuizStore) attemptsSnapshot() []domain.AttemptSummary {
	s.attemptsMu.RLock()
	defer s.attemptsMu.RUnlock()
	return append([]domain.AttemptSummary(nil), s.attempts...)
}

// FetchMine replaces the collection with the server's listing.
func (s *QuizStore) FetchMine(ctx context.Context) ([]domain.Quiz, error) {
	return track(ctx, s.Store, "quiz.list", "Failed to fetch quizzes", s.gateway.ListMine, s.replaceItems)
}

// FetchByID loads a quiz for attempting and makes it current.
func (s *QuizStore) FetchByID(ctx context.Context, id string) (domain.Quiz, error) {
	return track(ctx, s.Store, "quiz.get", "Failed to fetch quiz",
		func(ctx context.Context) (domain.Quiz, error) { return s.gateway.Get(ctx, id) },
		s.setCurrent)
}

// Create generates a quiz and returns its id. The collection is left as is;
// callers re-fetch or navigate to the new quiz.
func (s *QuizStore) Create(ctx context.Context, form gateway.QuizForm) (string, error) {
	return track(ctx, s.Store, "quiz.create", "Failed to create quiz",
		func(ctx context.Context) (string, error) { return s.gateway.Create(ctx, form) },
		nil)
}

// Delete removes the quiz remotely, then from the collection.
func (s *QuizStore) Delete(ctx context.Context, id string) error {
	_, err := track(ctx, s.Store, "quiz.delete", "Failed to delete quiz",
		func(ctx context.Context) (struct{}, error) { return struct{}{}, s.gateway.Delete(ctx, id) },
		func(struct{}) { s.removeItem(id) })
	return err
}

// Submit posts an attempt and stores the graded result. When the server only
// acknowledges the attempt, the receipt is stored and the graded attempt is
// loaded with FetchAttempt. If that load fails the attempt still counts as
// submitted: the receipt is returned with an error wrapping ErrResultPending.
func (s *QuizStore) Submit(ctx context.Context, quizID string, responses []domain.AttemptResponse) (domain.QuizResult, error) {
	receipt, err := track(ctx, s.Store, "quiz.submit", "Failed to submit quiz attempt",
		func(ctx context.Context) (domain.QuizResult, error) {
			return s.gateway.SubmitAttempt(ctx, quizID, responses)
		},
		s.applyResult)
	if err != nil {
		return domain.QuizResult{}, err
	}
	if len(receipt.Questions) > 0 || receipt.AttemptID == "" {
		return receipt, nil
	}

	graded, err := s.FetchAttempt(ctx, receipt.AttemptID)
	if err != nil {
		return receipt, fmt.Errorf("%w: %w", domain.ErrResultPending, err)
	}
	return graded, nil
}

// FetchAttempts replaces the attempts listing for one quiz.
func (s *QuizStore) FetchAttempts(ctx context.Context, quizID string) ([]domain.AttemptSummary, error) {
	return track(ctx, s.Store, "quiz.attempts", "Failed to fetch quiz attempts",
		func(ctx context.Context) ([]domain.AttemptSummary, error) { return s.gateway.ListAttempts(ctx, quizID) },
		func(attempts []domain.AttemptSummary) {
			s.attemptsMu.Lock()
			s.attempts = append([]domain.AttemptSummary(nil), attempts...)
			s.attemptsMu.Unlock()
		})
}

// FetchAttempt loads a graded attempt into the result slot.
func (s *QuizStore) FetchAttempt(ctx context.Context, attemptID string) (domain.QuizResult, error) {
	return track(ctx, s.Store, "quiz.attempt", "Failed to fetch quiz attempt",
		func(ctx context.Context) (domain.QuizResult, error) { return s.gateway.GetAttempt(ctx, attemptID) },
		s.applyResult)
}

// SelectAnswer writes a draft selection onto the current quiz. It reports
// false when no current quiz holds that question.
func (s *QuizStore) SelectAnswer(quizID, questionID, choiceID string) bool {
	found := false
	s.mutate(func() {
		if s.current == nil || s.current.ID != quizID {
			return
		}
		for i := range s.current.Questions {
			if s.current.Questions[i].ID == questionID {
				s.current.Questions[i].SelectedChoiceID = choiceID
				found = true
				return
			}
		}
	})
	return found
}

func (s *QuizStore) applyResult(result domain.QuizResult) {
	result.Questions = domain.Quiz{Questions: result.Questions}.Clone().Questions
	s.setResult(result)
}
