package analyzer

import (
	"regexp"
	"strings"
	"time"

	"github.com/qs3c/aiseo_go_server/internal/model"
)

var (
	capitalizedNamePattern = regexp.MustCompile(`\b[A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)*\b`)
	companySuffixPattern   = regexp.MustCompile(`\b\w+(?:\s+\w+)?\s+(?:Inc|Corp|LLC|Ltd|Company)\b`)
)

var authorityWords = []string{
	"leading", "popular", "trusted", "best", "top", "industry", "standard", "widely",
}

// Fallback 分析模型不可用时的本地启发式兜底：正则抓大写词当候选
// 实体，扫权威性用词，其余字段填占位说明。
func Fallback(responseText, query, provider string) *model.AnalysisResult {
	companies := extractCandidateNames(responseText)

	lower := strings.ToLower(responseText)
	var signals []string
	for _, word := range authorityWords {
		if strings.Contains(lower, word) {
			signals = append(signals, word)
		}
	}

	result := &model.AnalysisResult{
		Timestamp:            time.Now().Format(time.RFC3339),
		Query:                query,
		Provider:             provider,
		CompaniesMentioned:   companies,
		MentionReasons:       map[string]string{"extracted": "Fallback analysis - AI unavailable"},
		AuthoritySignals:     signals,
		RankingFactors:       "Analysis unavailable",
		Sentiment:            "neutral",
		OptimizationInsights: "AI analysis unavailable - manual review recommended",
	}
	result.FillDefaults()
	return result
}

// extractCandidateNames 大写开头的词组加企业后缀命中，去重后最多取 10 个
func extractCandidateNames(text string) []string {
	var candidates []string
	candidates = append(candidates, capitalizedNamePattern.FindAllString(text, 15)...)
	candidates = append(candidates, companySuffixPattern.FindAllString(text, 10)...)

	seen := make(map[string]struct{}, len(candidates))
	out := make([]string, 0, 10)
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		key := strings.ToLower(c)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
		if len(out) == 10 {
			break
		}
	}
	return out
}
