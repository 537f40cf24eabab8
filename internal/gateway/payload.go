package gateway

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"studyhub-client/internal/domain"
)

// Quiz and summary source types.
const (
	SourceManual   = "manual"
	SourceYouTube  = "youtube"
	SourceArticle  = "article"
	SourceMistakes = "mistakes"
	SourceText     = "text"
)

const defaultQuestionCount = 5

// ContentSource points at remote material to generate from.
type ContentSource struct {
	URL string `validate:"omitempty,url"`
}

// QuizForm holds the create-quiz form values as the UI collects them.
type QuizForm struct {
	QuizSource        string `validate:"required,oneof=manual youtube article mistakes"`
	QuizTopic         string
	Difficulty        string `validate:"required,oneof=easy medium hard very_hard"`
	ContentSource     *ContentSource
	Prompt            string `validate:"omitempty,min=10"`
	NumberOfQuestions int    `validate:"omitempty,min=3,max=30"`
}

// SummaryForm holds the create-summary form values.
type SummaryForm struct {
	SummarySource string `validate:"required,oneof=text youtube article"`
	ContentSource *ContentSource
	TextContent   string
	Prompt        string
	Length        string `validate:"omitempty,oneof=short medium long"`
}

// RequiresURL reports whether a source type generates from a remote URL.
func RequiresURL(source string) bool {
	return source == SourceYouTube || source == SourceArticle
}

type contentSourceRequest struct {
	URL string `json:"url"`
}

// createQuizRequest is the wire shape of POST /quiz/.
// QuizForm field → wire key:
//
//	QuizSource        → quiz_source
//	QuizTopic         → quiz_topic
//	Difficulty        → difficulty
//	ContentSource.URL → content_source.url (only for sources that need a URL)
//	Prompt            → prompt
//	NumberOfQuestions → number_of_questions
type createQuizRequest struct {
	QuizSource        string                `json:"quiz_source"`
	QuizTopic         string                `json:"quiz_topic,omitempty"`
	Difficulty        string                `json:"difficulty"`
	ContentSource     *contentSourceRequest `json:"content_source,omitempty"`
	Prompt            string                `json:"prompt,omitempty"`
	NumberOfQuestions int                   `json:"number_of_questions"`
}

// createSummaryRequest is the wire shape of POST /summary/. The summary
// endpoint declares its fields in camelCase, so the keys mirror that.
//
//	SummarySource     → summarySource
//	ContentSource.URL → contentSource.url (only for sources that need a URL)
//	TextContent       → textContent (only for text)
//	Prompt            → prompt
//	Length            → length
type createSummaryRequest struct {
	SummarySource string                `json:"summarySource"`
	ContentSource *contentSourceRequest `json:"contentSource,omitempty"`
	TextContent   string                `json:"textContent,omitempty"`
	Prompt        string                `json:"prompt,omitempty"`
	Length        string                `json:"length"`
}

type attemptRequest struct {
	QuizID    string                   `json:"quiz_id"`
	Responses []domain.AttemptResponse `json:"responses"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// newCreateQuizRequest validates the form and maps it onto the wire shape.
func newCreateQuizRequest(form QuizForm) (createQuizRequest, error) {
	if err := Validate(form); err != nil {
		return createQuizRequest{}, err
	}
	req := createQuizRequest{
		QuizSource:        form.QuizSource,
		QuizTopic:         strings.TrimSpace(form.QuizTopic),
		Difficulty:        form.Difficulty,
		Prompt:            form.Prompt,
		NumberOfQuestions: form.NumberOfQuestions,
	}
	if req.NumberOfQuestions == 0 {
		req.NumberOfQuestions = defaultQuestionCount
	}
	if RequiresURL(form.QuizSource) {
		url, err := requiredURL(form.ContentSource)
		if err != nil {
			return createQuizRequest{}, err
		}
		req.ContentSource = &contentSourceRequest{URL: url}
	}
	return req, nil
}

// newCreateSummaryRequest validates the form and maps it onto the wire shape.
func newCreateSummaryRequest(form SummaryForm) (createSummaryRequest, error) {
	if err := Validate(form); err != nil {
		return createSummaryRequest{}, err
	}
	req := createSummaryRequest{
		SummarySource: form.SummarySource,
		Prompt:        form.Prompt,
		Length:        form.Length,
	}
	if req.Length == "" {
		req.Length = "medium"
	}
	switch {
	case RequiresURL(form.SummarySource):
		url, err := requiredURL(form.ContentSource)
		if err != nil {
			return createSummaryRequest{}, err
		}
		req.ContentSource = &contentSourceRequest{URL: url}
	case form.SummarySource == SourceText:
		if len(strings.TrimSpace(form.TextContent)) < 20 {
			return createSummaryRequest{}, &domain.ValidationError{Field: "TextContent", Message: "content must be at least 20 characters"}
		}
		req.TextContent = form.TextContent
	}
	return req, nil
}

func requiredURL(source *ContentSource) (string, error) {
	if source == nil || strings.TrimSpace(source.URL) == "" {
		return "", &domain.ValidationError{Field: "ContentSource.URL", Message: "URL is required"}
	}
	return strings.TrimSpace(source.URL), nil
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validate checks struct tags and reports the first failure as a *domain.ValidationError.
func Validate(v any) error {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &domain.ValidationError{Field: fieldPath(fe), Message: describe(fe), Err: err}
	}
	return &domain.ValidationError{Message: err.Error(), Err: err}
}

// fieldPath drops the struct name from the namespace, e.g. QuizForm.ContentSource.URL → ContentSource.URL.
func fieldPath(fe validator.FieldError) string {
	ns := fe.StructNamespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email"
	case "url":
		return "must be a valid URL"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
