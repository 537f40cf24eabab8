package gateway

import (
	"context"
	"net/http"
	"net/url"

	"studyhub-client/internal/domain"
)

// SummaryGateway maps summary operations onto /summary endpoints.
type SummaryGateway struct {
	sender Sender
}

func NewSummaryGateway(sender Sender) *SummaryGateway {
	return &SummaryGateway{sender: sender}
}

func (g *SummaryGateway) ListMine(ctx context.Context) ([]domain.Summary, error) {
	var out struct {
		Summaries []summaryWire `json:"summaries"`
	}
	if err := call(ctx, g.sender, http.MethodGet, "/summary/mysummaries", nil, &out); err != nil {
		return nil, err
	}
	summaries := make([]domain.Summary, 0, len(out.Summaries))
	for _, s := range out.Summaries {
		summaries = append(summaries, s.normalize())
	}
	return summaries, nil
}

func (g *SummaryGateway) Get(ctx context.Context, summaryID string) (domain.Summary, error) {
	var out summaryWire
	if err := call(ctx, g.sender, http.MethodGet, "/summary/"+url.PathEscape(summaryID), nil, &out); err != nil {
		return domain.Summary{}, err
	}
	return out.normalize(), nil
}

// Create generates a summary and returns its id.
func (g *SummaryGateway) Create(ctx context.Context, form SummaryForm) (string, error) {
	body, err := newCreateSummaryRequest(form)
	if err != nil {
		return "", err
	}
	var out struct {
		SummaryID string `json:"summary_id"`
	}
	if err := call(ctx, g.sender, http.MethodPost, "/summary/", body, &out); err != nil {
		return "", err
	}
	return out.SummaryID, nil
}

func (g *SummaryGateway) Delete(ctx context.Context, summaryID string) error {
	return call(ctx, g.sender, http.MethodDelete, "/summary/"+url.PathEscape(summaryID), nil, nil)
}

// summaryWire carries both legacy body fields; normalize keeps one.
type summaryWire struct {
	domain.Summary
	SummaryText string `json:"summary_text"`
	LegacyText  string `json:"summary"`
}

func (w summaryWire) normalize() domain.Summary {
	s := w.Summary
	switch {
	case w.SummaryText != "":
		s.Text = w.SummaryText
	default:
		s.Text = w.LegacyText
	}
	return s
}
