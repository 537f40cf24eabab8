package app

import (
	"context"

	"go.uber.org/zap"

	"studyhub-client/internal/domain"
	"studyhub-client/internal/gateway"
)

// SummaryGateway is the remote surface the summary store needs.
type SummaryGateway interface {
	ListMine(ctx context.Context) ([]domain.Summary, error)
	Get(ctx context.Context, summaryID string) (domain.Summary, error)
	Create(ctx context.Context, form gateway.SummaryForm) (string, error)
	Delete(ctx context.Context, summaryID string) error
}

// SummaryStore holds my summaries and the one being viewed. Summaries have no
// result entity.
type SummaryStore struct {
	*Store[domain.Summary, struct{}]
	gateway SummaryGateway
}

func NewSummaryStore(gw SummaryGateway, logger *zap.Logger) *SummaryStore {
	return &SummaryStore{
		Store:   NewStore[domain.Summary, struct{}](summaryID, cloneSummary, logger),
		gateway: gw,
	}
}

func summaryID(s domain.Summary) string { return s.ID }

func cloneSummary(s domain.Summary) domain.Summary {
	s.RelatedQuestions = append([]domain.RelatedQuestion(nil), s.RelatedQuestions...)
	return s
}

func (s *SummaryStore) FetchMine(ctx context.Context) ([]domain.Summary, error) {
	return track(ctx, s.Store, "summary.list", "Failed to fetch summaries", s.gateway.ListMine, s.replaceItems)
}

func (s *SummaryStore) FetchByID(ctx context.Context, id string) (domain.Summary, error) {
	return track(ctx, s.Store, "summary.get", "Failed to fetch summary",
		func(ctx context.Context) (domain.Summary, error) { return s.gateway.Get(ctx, id) },
		s.setCurrent)
}

// Create generates a summary and returns its id; the collection is left as is.
func (s *SummaryStore) Create(ctx context.Context, form gateway.SummaryForm) (string, error) {
	return track(ctx, s.Store, "summary.create", "Failed to create summary",
		func(ctx context.Context) (string, error) { return s.gateway.Create(ctx, form) },
		nil)
}

func (s *SummaryStore) Delete(ctx context.Context, id string) error {
	_, err := track(ctx, s.Store, "summary.delete", "Failed to delete summary",
		func(ctx context.Context) (struct{}, error) { return struct{}{}, s.gateway.Delete(ctx, id) },
		func(struct{}) { s.removeItem(id) })
	return err
}
