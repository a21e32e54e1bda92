package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/aiseo_go_server/internal/model/dto"
	"github.com/qs3c/aiseo_go_server/internal/pkg/response"
	"github.com/qs3c/aiseo_go_server/internal/service"
	"github.com/qs3c/aiseo_go_server/internal/store"
)

type QueryHandler struct {
	queryService *service.QueryService
}

func NewQueryHandler(queryService *service.QueryService) *QueryHandler {
	return &QueryHandler{queryService: queryService}
}

// Submit 提交查询
// POST /api/v1/query
func (h *QueryHandler) Submit(c *gin.Context) {
	var req dto.SubmitQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "查询内容不能为空")
		return
	}

	job, err := h.queryService.Submit(req.Prompt, req.Providers)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, dto.SubmitQueryResponse{
		JobID:   job.ID,
		Message: "查询已提交，正在处理",
		Channel: job.ID,
	})
}

// Get 查询任务当前状态与已有结果
// GET /api/v1/results/:id
func (h *QueryHandler) Get(c *gin.Context) {
	job, err := h.queryService.Get(c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, job)
}

// GetAnalysis 查询任务的分析结果
// GET /api/v1/analysis/:id
func (h *QueryHandler) GetAnalysis(c *gin.Context) {
	analysis, err := h.queryService.Analysis(c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, analysis)
}

// History 最近的查询历史
// GET /api/v1/history
func (h *QueryHandler) History(c *gin.Context) {
	jobs, err := h.queryService.History()
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, jobs)
}

// Export 导出任务结果
// GET /api/v1/export/:id?format=json|csv
func (h *QueryHandler) Export(c *gin.Context) {
	id := c.Param("id")
	format := c.DefaultQuery("format", "json")

	switch format {
	case "json":
		data, err := h.queryService.ExportJSON(id)
		if err != nil {
			h.handleError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=query_%s.json", id))
		c.Data(http.StatusOK, "application/json", data)
	case "csv":
		data, err := h.queryService.ExportCSV(id)
		if err != nil {
			h.handleError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=query_%s.csv", id))
		c.Data(http.StatusOK, "text/csv", data)
	default:
		response.ParamError(c, "不支持的导出格式")
	}
}

func (h *QueryHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyQuery):
		response.ParamError(c, err.Error())
	case errors.Is(err, store.ErrJobNotFound):
		response.NotFoundError(c, err.Error())
	case errors.Is(err, service.ErrNoAnalysis):
		response.NotFoundError(c, err.Error())
	default:
		log.Printf("Query handler error: %v", err)
		response.ServerError(c, "")
	}
}

// Health 健康检查
// GET /api/v1/health
func Health(c *gin.Context) {
	response.Success(c, dto.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}
