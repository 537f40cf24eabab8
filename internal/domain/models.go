package domain

// Route names understood by the navigation capability.
const (
	RouteLogin     = "/login"
	RouteRegister  = "/register"
	RouteDashboard = "/dashboard"
)

// NoContent is rendered when a summary carries no body text.
const NoContent = "No content available"

// Choice is a possible answer for a question. Explanation is present only in graded results.
type Choice struct {
	ID          string `json:"choice_id"`
	Text        string `json:"choice_text"`
	Explanation string `json:"choice_explanation,omitempty"`
}

// Question models an MCQ question. SelectedChoiceID is the local draft selection;
// CorrectChoiceID and Explanation are only set in review contexts.
type Question struct {
	ID               string   `json:"question_id"`
	Text             string   `json:"question_text"`
	Choices          []Choice `json:"choices"`
	SelectedChoiceID string   `json:"selected_choice_id,omitempty"`
	CorrectChoiceID  string   `json:"correct_choice_id,omitempty"`
	Explanation      string   `json:"answer_explanation,omitempty"`
}

// HasChoice reports whether choiceID is one of the question's choices.
func (q Question) HasChoice(choiceID string) bool {
	for _, c := range q.Choices {
		if c.ID == choiceID {
			return true
		}
	}
	return false
}

// Quiz is a quiz entity. Listing responses omit Questions and fill the counters instead.
type Quiz struct {
	ID             string     `json:"quiz_id"`
	Title          string     `json:"quiz_title"`
	Difficulty     string     `json:"difficulty"`
	Category       string     `json:"category"`
	Source         string     `json:"quiz_source,omitempty"`
	SourceID       string     `json:"source_id,omitempty"`
	CreatedBy      string     `json:"created_by,omitempty"`
	CreatedAt      string     `json:"created_at,omitempty"`
	AttemptCount   int        `json:"attempt_count,omitempty"`
	QuestionsCount int        `json:"questions_count,omitempty"`
	Questions      []Question `json:"questions,omitempty"`
}

// Answered counts questions carrying a draft selection.
func (q Quiz) Answered() int {
	n := 0
	for _, question := range q.Questions {
		if question.SelectedChoiceID != "" {
			n++
		}
	}
	return n
}

// Clone returns a deep copy so callers never share question slices with a store.
func (q Quiz) Clone() Quiz {
	out := q
	if q.Questions != nil {
		out.Questions = make([]Question, len(q.Questions))
		for i, question := range q.Questions {
			question.Choices = append([]Choice(nil), question.Choices...)
			out.Questions[i] = question
		}
	}
	return out
}

// AttemptResponse is one answered question in a submission.
type AttemptResponse struct {
	QuestionID       string `json:"question_id"`
	SelectedChoiceID string `json:"selected_choice_id"`
}

// ResultStats aggregates the grading of one attempt.
type ResultStats struct {
	CorrectCount     int      `json:"correct_count"`
	WrongCount       int      `json:"wrong_count"`
	TotalQuestions   int      `json:"total_questions"`
	MarksObtained    int      `json:"marks_obtained"`
	TotalMarks       int      `json:"total_marks"`
	WrongQuestionIDs []string `json:"wrong_question_ids,omitempty"`
}

// QuizResult is a graded attempt. It is created by the server and read-only here.
// Right after a submission the server may return only the ids, leaving Questions empty.
type QuizResult struct {
	AttemptID   string      `json:"attempt_id"`
	QuizID      string      `json:"quiz_id"`
	AttemptedAt string      `json:"attempted_at"`
	Stats       ResultStats `json:"stats"`
	Questions   []Question  `json:"questions"`
}

// AttemptSummary is a row of the attempts-by-quiz listing.
type AttemptSummary struct {
	AttemptID     string      `json:"attempt_id"`
	AttemptedAt   string      `json:"attempted_at"`
	MarksObtained int         `json:"marks_obtained"`
	TotalMarks    int         `json:"total_marks"`
	Stats         ResultStats `json:"stats"`
}

// RelatedQuestion is a generated Q/A pair attached to a summary.
type RelatedQuestion struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Summary is a generated text summary. Text is the canonical body, resolved by the gateway.
type Summary struct {
	ID               string            `json:"summary_id"`
	UserID           string            `json:"user_id,omitempty"`
	Title            string            `json:"title,omitempty"`
	Text             string            `json:"-"`
	SourceType       string            `json:"source_type"`
	SourceURL        string            `json:"source_url,omitempty"`
	RelatedQuestions []RelatedQuestion `json:"related_questions,omitempty"`
	CreatedAt        string            `json:"created_at,omitempty"`
	CreatedBy        string            `json:"created_by,omitempty"`
}

// Body returns the text to render, falling back to a placeholder.
func (s Summary) Body() string {
	if s.Text == "" {
		return NoContent
	}
	return s.Text
}

// Credentials are the login form values.
type Credentials struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// Registration are the register form values.
type Registration struct {
	Username string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// TokenGrant is the body of a successful login or refresh.
type TokenGrant struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
