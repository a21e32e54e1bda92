package analyzer

import (
	"encoding/csv"
	"encoding/json"
	"os"

	"github.com/qs3c/aiseo_go_server/internal/model"
)

var csvHeader = []string{
	"timestamp", "query", "provider",
	"companies_mentioned", "mention_reasons", "authority_signals",
	"key_features", "sources_cited", "ranking_factors",
	"sentiment", "optimization_insights",
}

// appendCSV 追加一行分析记录到本地 CSV 日志，首次写入补表头。
// 复合字段序列化成 JSON 存在单元格里。
func (a *Analyzer) appendCSV(result *model.AnalysisResult) error {
	a.csvMu.Lock()
	defer a.csvMu.Unlock()

	_, statErr := os.Stat(a.csvPath)
	newFile := os.IsNotExist(statErr)

	f, err := os.OpenFile(a.csvPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if newFile {
		if err := w.Write(csvHeader); err != nil {
			return err
		}
	}

	row := []string{
		result.Timestamp,
		result.Query,
		result.Provider,
		jsonCell(result.CompaniesMentioned),
		jsonCell(result.MentionReasons),
		jsonCell(result.AuthoritySignals),
		jsonCell(result.KeyFeatures),
		jsonCell(result.SourcesCited),
		result.RankingFactors,
		result.Sentiment,
		result.OptimizationInsights,
	}
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func jsonCell(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}
