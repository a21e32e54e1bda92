package service

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/qs3c/aiseo_go_server/internal/model"
)

// ExportJSON 导出任务完整快照
func (s *QueryService) ExportJSON(id string) ([]byte, error) {
	job, err := s.jobStore.Get(id)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(job, "", "  ")
}

// ExportCSV 导出各服务商结果的表格视图，按服务商标识排序保证稳定
func (s *QueryService) ExportCSV(id string) ([]byte, error) {
	job, err := s.jobStore.Get(id)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(job.Results))
	for name := range job.Results {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"Provider", "Model", "Response", "Success"}); err != nil {
		return nil, err
	}
	for _, name := range names {
		result := job.Results[name]
		row := []string{name, result.Model, responseCell(&result), fmt.Sprintf("%t", result.Success)}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// responseCell 文本回复原样输出，搜索结果拼成可读的单元格
func responseCell(result *model.ProviderResult) string {
	if !result.Success {
		return result.Error
	}
	if result.Hits == nil {
		return result.Text
	}
	parts := make([]string, 0, len(result.Hits))
	for _, hit := range result.Hits {
		parts = append(parts, fmt.Sprintf("%s (%s)", hit.Title, hit.Link))
	}
	return strings.Join(parts, "; ")
}
