package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"

	"github.com/qs3c/aiseo_go_server/config"
	"github.com/qs3c/aiseo_go_server/internal/model"
)

const maxSourcesCited = 30

const systemPrompt = "You are an AI optimization expert analyzing responses for AISEO insights. Always return valid JSON."

// Analyzer 二次分析：把服务商回复交给分析模型，提取 AISEO 洞察。
// 任何失败（网络、解析、配额）都降级成本地启发式结果，绝不让分析
// 拖垮所在的查询任务。
type Analyzer struct {
	client        openai.Client
	enabled       bool
	model         string
	maxTokens     int64
	temperature   float64
	timeout       time.Duration
	maxInputChars int
	csvPath       string
	csvMu         sync.Mutex
}

func New(cfg config.AnalysisConfig) *Analyzer {
	return &Analyzer{
		client:        openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		enabled:       cfg.Enabled && !config.IsPlaceholderKey(cfg.APIKey),
		model:         cfg.Model,
		maxTokens:     int64(cfg.MaxTokens),
		temperature:   cfg.Temperature,
		timeout:       time.Duration(cfg.TimeoutSeconds) * time.Second,
		maxInputChars: cfg.MaxInputChars,
		csvPath:       cfg.CSVPath,
	}
}

func (a *Analyzer) Enabled() bool {
	return a.enabled
}

// Analyze 分析单条回复。永不返回 nil，失败时给出启发式兜底结果。
func (a *Analyzer) Analyze(ctx context.Context, responseText, query, provider string) *model.AnalysisResult {
	result, err := a.analyzeWithAI(ctx, responseText, query, provider)
	if err != nil {
		log.Printf("Analysis failed for %s: %v", provider, err)
		result = Fallback(responseText, query, provider)
	}

	if a.csvPath != "" {
		if err := a.appendCSV(result); err != nil {
			log.Printf("Failed to save analysis to CSV: %v", err)
		}
	}
	return result
}

func (a *Analyzer) analyzeWithAI(ctx context.Context, responseText, query, provider string) (*model.AnalysisResult, error) {
	// 截断超长回复，避免触发请求体上限
	responseText = truncateForAnalysis(responseText, a.maxInputChars)

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(a.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(buildAnalysisPrompt(responseText, query, provider)),
		},
		MaxTokens:   openai.Int(a.maxTokens),
		Temperature: openai.Float(a.temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty analysis response")
	}

	result, err := ParseAnalysis(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	result.Timestamp = time.Now().Format(time.RFC3339)
	result.Query = query
	result.Provider = provider
	return result, nil
}

// truncateForAnalysis 截断点回退到字符边界，不在多字节字符中间切开
func truncateForAnalysis(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "... [truncated for analysis]"
}

func buildAnalysisPrompt(responseText, query, provider string) string {
	return fmt.Sprintf(`Analyze this AI response for SEO/AISEO optimization insights.

Extract the following information in JSON format:

1. companies_mentioned: List all companies/brands/products mentioned
2. mention_reasons: For each company, why was it mentioned? (features, authority, popularity, etc.)
3. authority_signals: Authority phrases used (e.g., "leading", "popular", "trusted", "industry standard")
4. key_features: What features/benefits were highlighted as important?
5. sources_cited: Any sources, websites, or references mentioned
6. ranking_factors: What seems to determine the order/prominence of mentions?
7. sentiment: Overall sentiment toward mentioned entities (positive/neutral/negative)
8. optimization_insights: Specific actionable tips for AISEO based on this response

Original Query: %s
Provider: %s

Response to analyze:
%s

Return ONLY valid JSON with these exact keys. Be specific and actionable in optimization_insights.`, query, provider, responseText)
}

// ParseAnalysis 宽容解析分析模型的输出：先剥掉代码块包装，解析失败
// 再做一次修复重试；字段类型不符时按默认值兜底。
func ParseAnalysis(text string) (*model.AnalysisResult, error) {
	text = stripCodeFence(text)

	result, err := decodeAnalysis([]byte(text))
	if err != nil {
		result, err = decodeAnalysis([]byte(repairJSON(text)))
		if err != nil {
			return nil, fmt.Errorf("failed to parse analysis JSON: %w", err)
		}
	}
	return result, nil
}

func decodeAnalysis(data []byte) (*model.AnalysisResult, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	result := &model.AnalysisResult{
		CompaniesMentioned:   asStringSlice(raw["companies_mentioned"]),
		MentionReasons:       asStringMap(raw["mention_reasons"]),
		AuthoritySignals:     asStringSlice(raw["authority_signals"]),
		KeyFeatures:          asStringSlice(raw["key_features"]),
		SourcesCited:         dedupeSources(asStringSlice(raw["sources_cited"])),
		RankingFactors:       asString(raw["ranking_factors"]),
		Sentiment:            asString(raw["sentiment"]),
		OptimizationInsights: asString(raw["optimization_insights"]),
	}
	result.FillDefaults()
	return result, nil
}

// asString 字符串字段；模型偶尔返回数组，拼成一段文本
func asString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, "; ")
	}
	return string(raw)
}

// asStringSlice 字符串数组字段；单个字符串视作单元素数组
func asStringSlice(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		return []string{s}
	}
	var anyList []interface{}
	if err := json.Unmarshal(raw, &anyList); err == nil {
		out := make([]string, 0, len(anyList))
		for _, v := range anyList {
			out = append(out, fmt.Sprintf("%v", v))
		}
		return out
	}
	return nil
}

func asStringMap(raw json.RawMessage) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(raw, &m); err == nil {
		return m
	}
	var anyMap map[string]interface{}
	if err := json.Unmarshal(raw, &anyMap); err == nil {
		out := make(map[string]string, len(anyMap))
		for k, v := range anyMap {
			out[k] = fmt.Sprintf("%v", v)
		}
		return out
	}
	return nil
}

// dedupeSources 大小写不敏感去重，最多保留 30 条
func dedupeSources(sources []string) []string {
	if sources == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(sources))
	out := make([]string, 0, len(sources))
	for _, s := range sources {
		key := strings.ToLower(strings.TrimSpace(s))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
		if len(out) == maxSourcesCited {
			break
		}
	}
	return out
}
