package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/aiseo_go_server/internal/model/dto"
	"github.com/qs3c/aiseo_go_server/internal/pkg/response"
	"github.com/qs3c/aiseo_go_server/internal/provider"
	"github.com/qs3c/aiseo_go_server/internal/service"
)

type ProvidersHandler struct {
	registry provider.Source
	analyzer service.ResultAnalyzer
}

func NewProvidersHandler(registry provider.Source, analyzer service.ResultAnalyzer) *ProvidersHandler {
	return &ProvidersHandler{registry: registry, analyzer: analyzer}
}

// List 当前启用的服务商。每次请求重新评估凭证，新配的密钥即时可见
// GET /api/v1/providers
func (h *ProvidersHandler) List(c *gin.Context) {
	registry := h.registry()
	names := registry.Enabled()
	infos := make([]dto.ProviderInfo, 0, len(names))
	for _, name := range names {
		adapter, ok := registry.Get(name)
		if !ok {
			continue
		}
		infos = append(infos, dto.ProviderInfo{
			ID:      adapter.Name(),
			Name:    adapter.DisplayName(),
			Enabled: true,
			Model:   adapter.Model(),
		})
	}

	response.Success(c, dto.ProvidersResponse{
		Providers:       infos,
		AnalysisEnabled: h.analyzer != nil && h.analyzer.Enabled(),
	})
}
