package app_test

import (
	"context"
	"sync"

	"studyhub-client/internal/domain"
	"studyhub-client/internal/gateway"
)

// stubQuizzes is an in-memory quiz backend. listGate and deleteGate, when
// set, hold the matching calls until closed.
type stubQuizzes struct {
	mu            sync.Mutex
	list          []domain.Quiz
	quizzes       map[string]domain.Quiz
	listErr       error
	getErr        error
	submitErr     error
	receipt       domain.QuizResult
	graded        map[string]domain.QuizResult
	attempts      []domain.AttemptSummary
	submitted     [][]domain.AttemptResponse
	attemptReads  int
	listGate      chan struct{}
	listStarted   chan struct{}
	deleteGate    chan struct{}
	deleteStarted chan struct{}
}

func newStubQuizzes(quizzes ...domain.Quiz) *stubQuizzes {
	s := &stubQuizzes{quizzes: map[string]domain.Quiz{}, graded: map[string]domain.QuizResult{}}
	for _, q := range quizzes {
		s.quizzes[q.ID] = q
		listed := q
		listed.QuestionsCount = len(q.Questions)
		listed.Questions = nil
		s.list = append(s.list, listed)
	}
	return s
}

func (s *stubQuizzes) ListMine(ctx context.Context) ([]domain.Quiz, error) {
	s.mu.Lock()
	list, err, gate, started := append([]domain.Quiz(nil), s.list...), s.listErr, s.listGate, s.listStarted
	s.mu.Unlock()
	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	return list, err
}

func (s *stubQuizzes) Get(ctx context.Context, quizID string) (domain.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return domain.Quiz{}, s.getErr
	}
	q, ok := s.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, &domain.RemoteError{Status: 404, Message: "Quiz not found"}
	}
	return q.Clone(), nil
}

func (s *stubQuizzes) Create(ctx context.Context, form gateway.QuizForm) (string, error) {
	if err := gateway.Validate(form); err != nil {
		return "", err
	}
	return "new-quiz", nil
}

func (s *stubQuizzes) Delete(ctx context.Context, quizID string) error {
	s.mu.Lock()
	gate, started := s.deleteGate, s.deleteStarted
	s.mu.Unlock()
	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	return nil
}

func (s *stubQuizzes) SubmitAttempt(ctx context.Context, quizID string, responses []domain.AttemptResponse) (domain.QuizResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitted = append(s.submitted, responses)
	if s.submitErr != nil {
		return domain.QuizResult{}, s.submitErr
	}
	return s.receipt, nil
}

func (s *stubQuizzes) ListAttempts(ctx context.Context, quizID string) ([]domain.AttemptSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts, nil
}

func (s *stubQuizzes) GetAttempt(ctx context.Context, attemptID string) (domain.QuizResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attemptReads++
	r, ok := s.graded[attemptID]
	if !ok {
		return domain.QuizResult{}, &domain.RemoteError{Status: 404, Message: "Attempt not found"}
	}
	return r, nil
}

func (s *stubQuizzes) submissions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.submitted)
}

type stubSummaries struct {
	list    []domain.Summary
	listErr error
}

func (s *stubSummaries) ListMine(ctx context.Context) ([]domain.Summary, error) {
	return s.list, s.listErr
}

func (s *stubSummaries) Get(ctx context.Context, id string) (domain.Summary, error) {
	for _, sum := range s.list {
		if sum.ID == id {
			return sum, nil
		}
	}
	return domain.Summary{}, &domain.RemoteError{Status: 404, Message: "Summary not found"}
}

func (s *stubSummaries) Create(ctx context.Context, form gateway.SummaryForm) (string, error) {
	return "new-summary", nil
}

func (s *stubSummaries) Delete(ctx context.Context, id string) error { return nil }

type stubAuth struct {
	mu        sync.Mutex
	grant     domain.TokenGrant
	loginErr  error
	regErr    error
	logoutErr error
	logouts   int
}

func (a *stubAuth) Login(ctx context.Context, creds domain.Credentials) (domain.TokenGrant, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.loginErr != nil {
		return domain.TokenGrant{}, a.loginErr
	}
	return a.grant, nil
}

func (a *stubAuth) Register(ctx context.Context, reg domain.Registration) error {
	return a.regErr
}

func (a *stubAuth) Logout(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logouts++
	return a.logoutErr
}

func threeQuestionQuiz() domain.Quiz {
	question := func(id string) domain.Question {
		return domain.Question{
			ID:   id,
			Text: "Question " + id,
			Choices: []domain.Choice{
				{ID: id + "-a", Text: "A"},
				{ID: id + "-b", Text: "B"},
				{ID: id + "-c", Text: "C"},
			},
		}
	}
	return domain.Quiz{
		ID:         "q1",
		Title:      "Photosynthesis",
		Difficulty: "easy",
		Category:   "biology",
		Questions:  []domain.Question{question("p1"), question("p2"), question("p3")},
	}
}
