package app_test

import (
	"context"
	"errors"
	"testing"

	"studyhub-client/internal/app"
	"studyhub-client/internal/domain"
	"studyhub-client/internal/gateway"
)

func validQuizForm() gateway.QuizForm {
	return gateway.QuizForm{
		QuizSource:        gateway.SourceManual,
		QuizTopic:         "Photosynthesis",
		Difficulty:        "easy",
		NumberOfQuestions: 3,
	}
}

func openDraft(t *testing.T, backend *stubQuizzes) (*app.QuizStore, *app.AttemptDraft) {
	t.Helper()
	store := app.NewQuizStore(backend, nil)
	if _, err := store.FetchByID(context.Background(), "q1"); err != nil {
		t.Fatalf("fetch quiz failed: %v", err)
	}
	draft, err := app.NewAttemptDraft(store)
	if err != nil {
		t.Fatalf("open draft failed: %v", err)
	}
	return store, draft
}

func TestDraftNeedsLoadedQuiz(t *testing.T) {
	store := app.NewQuizStore(newStubQuizzes(), nil)
	if _, err := app.NewAttemptDraft(store); !errors.Is(err, domain.ErrNoQuiz) {
		t.Fatalf("expected ErrNoQuiz, got %v", err)
	}
}

func TestDraftSelectKeepsLatestChoice(t *testing.T) {
	store, draft := openDraft(t, newStubQuizzes(threeQuestionQuiz()))

	if err := draft.Select("p1", "p1-a"); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if err := draft.Select("p1", "p1-c"); err != nil {
		t.Fatalf("select failed: %v", err)
	}

	if draft.Answered() != 1 {
		t.Fatalf("expected one answer, got %d", draft.Answered())
	}
	if choice, _ := draft.Answer("p1"); choice != "p1-c" {
		t.Fatalf("expected latest choice, got %q", choice)
	}
	payload := draft.Payload()
	if len(payload) != 1 || payload[0].SelectedChoiceID != "p1-c" {
		t.Fatalf("unexpected payload %+v", payload)
	}
	current := store.Snapshot().Current
	if current.Questions[0].SelectedChoiceID != "p1-c" || current.Answered() != 1 {
		t.Fatalf("selection was not written through: %+v", current.Questions[0])
	}
}

func TestDraftRejectsUnknownQuestionOrChoice(t *testing.T) {
	_, draft := openDraft(t, newStubQuizzes(threeQuestionQuiz()))

	var invalid *domain.ValidationError
	if err := draft.Select("nope", "p1-a"); !errors.As(err, &invalid) {
		t.Fatalf("expected validation error for unknown question, got %v", err)
	}
	if err := draft.Select("p1", "p2-a"); !errors.As(err, &invalid) {
		t.Fatalf("expected validation error for foreign choice, got %v", err)
	}
	if draft.Answered() != 0 {
		t.Fatalf("rejected selections must not be recorded")
	}
}

func TestDraftResumesExistingSelections(t *testing.T) {
	quiz := threeQuestionQuiz()
	quiz.Questions[1].SelectedChoiceID = "p2-b"
	_, draft := openDraft(t, newStubQuizzes(quiz))

	if draft.Answered() != 1 {
		t.Fatalf("expected resumed answer, got %d", draft.Answered())
	}
	if choice, ok := draft.Answer("p2"); !ok || choice != "p2-b" {
		t.Fatalf("unexpected resumed choice %q", choice)
	}
}

func TestIncompleteDraftIsNotSubmitted(t *testing.T) {
	backend := newStubQuizzes(threeQuestionQuiz())
	_, draft := openDraft(t, backend)
	_ = draft.Select("p1", "p1-a")
	_ = draft.Select("p2", "p2-a")

	if got := draft.Completion(); got != 67 {
		t.Fatalf("expected 67%% completion, got %d", got)
	}
	if _, err := draft.Submit(context.Background()); !errors.Is(err, domain.ErrIncompleteAttempt) {
		t.Fatalf("expected ErrIncompleteAttempt, got %v", err)
	}
	if backend.submissions() != 0 {
		t.Fatalf("incomplete draft reached the server")
	}
}

func TestFailedSubmitKeepsDraft(t *testing.T) {
	backend := newStubQuizzes(threeQuestionQuiz())
	backend.submitErr = &domain.RemoteError{Status: 500, Message: ""}
	store, draft := openDraft(t, backend)
	for _, q := range []string{"p1", "p2", "p3"} {
		if err := draft.Select(q, q+"-b"); err != nil {
			t.Fatalf("select failed: %v", err)
		}
	}
	if err := draft.Validate(); err != nil {
		t.Fatalf("complete draft should validate: %v", err)
	}

	if _, err := draft.Submit(context.Background()); err == nil {
		t.Fatalf("expected submit failure")
	}
	if draft.Answered() != 3 {
		t.Fatalf("draft lost after failure")
	}
	if got := store.Snapshot().Error; got != "Failed to submit quiz attempt" {
		t.Fatalf("unexpected store error %q", got)
	}

	backend.submitErr = nil
	backend.receipt = domain.QuizResult{
		AttemptID: "att-2",
		QuizID:    "q1",
		Stats:     domain.ResultStats{TotalQuestions: 3, MarksObtained: 1, TotalMarks: 3},
		Questions: threeQuestionQuiz().Questions,
	}
	if _, err := draft.Submit(context.Background()); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if got := backend.submitted[1]; len(got) != 3 {
		t.Fatalf("expected full payload, got %+v", got)
	}
	if draft.Answered() != 0 {
		t.Fatalf("expected draft discarded after success")
	}
	if err := draft.Select("p1", "p1-a"); !errors.Is(err, domain.ErrNoQuiz) {
		t.Fatalf("expected closed draft, got %v", err)
	}
	if r := store.Snapshot().Result; r == nil || r.AttemptID != "att-2" {
		t.Fatalf("expected stored result, got %+v", r)
	}
}

func TestAcceptedAttemptIsNotResubmittedWhenResultIsPending(t *testing.T) {
	backend := newStubQuizzes(threeQuestionQuiz())
	// The server accepts the attempt but the graded result is not readable yet.
	backend.receipt = domain.QuizResult{AttemptID: "att-1", QuizID: "q1"}
	store, draft := openDraft(t, backend)
	for _, q := range []string{"p1", "p2", "p3"} {
		if err := draft.Select(q, q+"-a"); err != nil {
			t.Fatalf("select failed: %v", err)
		}
	}

	result, err := draft.Submit(context.Background())
	if !errors.Is(err, domain.ErrResultPending) {
		t.Fatalf("expected ErrResultPending, got %v", err)
	}
	if result.AttemptID != "att-1" {
		t.Fatalf("expected the receipt back, got %+v", result)
	}
	if stored := store.Snapshot().Result; stored == nil || stored.AttemptID != "att-1" {
		t.Fatalf("expected receipt stored, got %+v", stored)
	}

	if _, err := draft.Submit(context.Background()); !errors.Is(err, domain.ErrNoQuiz) {
		t.Fatalf("expected closed draft, got %v", err)
	}
	if n := backend.submissions(); n != 1 {
		t.Fatalf("attempt submitted %d times", n)
	}

	backend.graded["att-1"] = domain.QuizResult{AttemptID: "att-1", QuizID: "q1", Questions: threeQuestionQuiz().Questions}
	graded, err := store.FetchAttempt(context.Background(), "att-1")
	if err != nil || len(graded.Questions) != 3 {
		t.Fatalf("later fetch failed: %v %+v", err, graded)
	}
}
