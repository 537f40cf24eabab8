package gateway

import (
	"context"
	"net/http"
	"net/url"

	"studyhub-client/internal/domain"
)

// QuizGateway maps quiz operations onto /quiz endpoints.
type QuizGateway struct {
	sender Sender
}

func NewQuizGateway(sender Sender) *QuizGateway {
	return &QuizGateway{sender: sender}
}

func (g *QuizGateway) ListMine(ctx context.Context) ([]domain.Quiz, error) {
	var out struct {
		Quizzes []domain.Quiz `json:"quizzes"`
	}
	if err := call(ctx, g.sender, http.MethodGet, "/quiz/myquizzes", nil, &out); err != nil {
		return nil, err
	}
	return out.Quizzes, nil
}

// Get loads a quiz for attempting; correct answers are never included.
func (g *QuizGateway) Get(ctx context.Context, quizID string) (domain.Quiz, error) {
	var quiz domain.Quiz
	if err := call(ctx, g.sender, http.MethodGet, "/quiz/"+url.PathEscape(quizID), nil, &quiz); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// Create generates a quiz and returns its id.
func (g *QuizGateway) Create(ctx context.Context, form QuizForm) (string, error) {
	body, err := newCreateQuizRequest(form)
	if err != nil {
		return "", err
	}
	var out struct {
		QuizID string `json:"quiz_id"`
	}
	if err := call(ctx, g.sender, http.MethodPost, "/quiz/", body, &out); err != nil {
		return "", err
	}
	return out.QuizID, nil
}

func (g *QuizGateway) Delete(ctx context.Context, quizID string) error {
	return call(ctx, g.sender, http.MethodDelete, "/quiz/"+url.PathEscape(quizID), nil, nil)
}

// SubmitAttempt posts the answers. The returned result may only carry ids
// when the server grades lazily; see GetAttempt.
func (g *QuizGateway) SubmitAttempt(ctx context.Context, quizID string, responses []domain.AttemptResponse) (domain.QuizResult, error) {
	var out resultWire
	body := attemptRequest{QuizID: quizID, Responses: responses}
	if err := call(ctx, g.sender, http.MethodPost, "/quiz/attempt", body, &out); err != nil {
		return domain.QuizResult{}, err
	}
	return out.normalize(), nil
}

func (g *QuizGateway) ListAttempts(ctx context.Context, quizID string) ([]domain.AttemptSummary, error) {
	var out struct {
		Attempts []attemptWire `json:"attempts"`
	}
	if err := call(ctx, g.sender, http.MethodGet, "/quiz/"+url.PathEscape(quizID)+"/attempts", nil, &out); err != nil {
		return nil, err
	}
	attempts := make([]domain.AttemptSummary, 0, len(out.Attempts))
	for _, a := range out.Attempts {
		attempts = append(attempts, a.normalize())
	}
	return attempts, nil
}

// GetAttempt loads a graded attempt.
func (g *QuizGateway) GetAttempt(ctx context.Context, attemptID string) (domain.QuizResult, error) {
	var out resultWire
	if err := call(ctx, g.sender, http.MethodGet, "/quiz/attempts/"+url.PathEscape(attemptID), nil, &out); err != nil {
		return domain.QuizResult{}, err
	}
	return out.normalize(), nil
}

// resultWire accepts stats both flat and nested under "stats".
type resultWire struct {
	domain.ResultStats
	AttemptID   string              `json:"attempt_id"`
	QuizID      string              `json:"quiz_id"`
	AttemptedAt string              `json:"attempted_at"`
	Stats       *domain.ResultStats `json:"stats"`
	Questions   []domain.Question   `json:"questions"`
}

func (w resultWire) normalize() domain.QuizResult {
	stats := mergeStats(w.ResultStats, w.Stats)
	if stats.TotalQuestions == 0 {
		stats.TotalQuestions = stats.CorrectCount + stats.WrongCount
	}
	if stats.TotalQuestions == 0 {
		stats.TotalQuestions = len(w.Questions)
	}
	return domain.QuizResult{
		AttemptID:   w.AttemptID,
		QuizID:      w.QuizID,
		AttemptedAt: w.AttemptedAt,
		Stats:       stats,
		Questions:   w.Questions,
	}
}

type attemptWire struct {
	AttemptID     string              `json:"attempt_id"`
	AttemptedAt   string              `json:"attempted_at"`
	MarksObtained int                 `json:"marks_obtained"`
	TotalMarks    int                 `json:"total_marks"`
	Stats         *domain.ResultStats `json:"stats"`
}

func (w attemptWire) normalize() domain.AttemptSummary {
	stats := mergeStats(domain.ResultStats{MarksObtained: w.MarksObtained, TotalMarks: w.TotalMarks}, w.Stats)
	if stats.TotalQuestions == 0 {
		stats.TotalQuestions = stats.CorrectCount + stats.WrongCount
	}
	return domain.AttemptSummary{
		AttemptID:     w.AttemptID,
		AttemptedAt:   w.AttemptedAt,
		MarksObtained: stats.MarksObtained,
		TotalMarks:    stats.TotalMarks,
		Stats:         stats,
	}
}

// mergeStats overlays the non-zero nested values onto the flat ones.
func mergeStats(flat domain.ResultStats, nested *domain.ResultStats) domain.ResultStats {
	if nested == nil {
		return flat
	}
	out := flat
	if nested.CorrectCount != 0 {
		out.CorrectCount = nested.CorrectCount
	}
	if nested.WrongCount != 0 {
		out.WrongCount = nested.WrongCount
	}
	if nested.TotalQuestions != 0 {
		out.TotalQuestions = nested.TotalQuestions
	}
	if nested.MarksObtained != 0 {
		out.MarksObtained = nested.MarksObtained
	}
	if nested.TotalMarks != 0 {
		out.TotalMarks = nested.TotalMarks
	}
	if len(nested.WrongQuestionIDs) > 0 {
		out.WrongQuestionIDs = nested.WrongQuestionIDs
	}
	return out
}
