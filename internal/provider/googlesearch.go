package provider

import (
	"context"
	"time"

	customsearch "google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/qs3c/aiseo_go_server/config"
	"github.com/qs3c/aiseo_go_server/internal/model"
)

// GoogleSearchAdapter Google Custom Search 适配器。搜索型：成功结果
// 携带 {title, link, snippet} 列表和命中总数，而不是自由文本。
type GoogleSearchAdapter struct {
	service *customsearch.Service
	initErr error
	cx      string
	num     int64
	timeout time.Duration
}

func NewGoogleSearch(cfg config.GoogleSearchConfig) *GoogleSearchAdapter {
	a := &GoogleSearchAdapter{
		cx:      cfg.CX,
		num:     int64(cfg.NumResults),
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
	a.service, a.initErr = customsearch.NewService(context.Background(), option.WithAPIKey(cfg.APIKey))
	return a
}

func (a *GoogleSearchAdapter) Name() string        { return ProviderGoogleSearch }
func (a *GoogleSearchAdapter) DisplayName() string { return "Google Search" }
func (a *GoogleSearchAdapter) Model() string       { return "" }
func (a *GoogleSearchAdapter) IsSearch() bool      { return true }

func (a *GoogleSearchAdapter) Call(ctx context.Context, prompt string) *model.ProviderResult {
	if a.initErr != nil {
		return model.NewErrorResult(ProviderGoogleSearch, a.initErr.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.service.Cse.List().
		Q(prompt).
		Cx(a.cx).
		Num(a.num).
		Context(ctx).
		Do()
	if err != nil {
		return model.NewErrorResult(ProviderGoogleSearch, err.Error())
	}

	hits := make([]model.SearchHit, 0, len(resp.Items))
	for _, item := range resp.Items {
		hits = append(hits, model.SearchHit{
			Title:   item.Title,
			Link:    item.Link,
			Snippet: item.Snippet,
		})
	}

	total := "0"
	if resp.SearchInformation != nil {
		total = resp.SearchInformation.TotalResults
	}

	return model.NewSearchResult(ProviderGoogleSearch, hits, total)
}
