package model

// AnalysisResult 针对单个服务商回复的 AISEO 洞察。八个内容字段保证
// 始终存在（缺失时补默认值），消费方无需判空。
type AnalysisResult struct {
	Timestamp            string            `json:"timestamp"`
	Query                string            `json:"query"`
	Provider             string            `json:"provider"`
	CompaniesMentioned   []string          `json:"companies_mentioned"`
	MentionReasons       map[string]string `json:"mention_reasons"`
	AuthoritySignals     []string          `json:"authority_signals"`
	KeyFeatures          []string          `json:"key_features"`
	SourcesCited         []string          `json:"sources_cited"`
	RankingFactors       string            `json:"ranking_factors"`
	Sentiment            string            `json:"sentiment"`
	OptimizationInsights string            `json:"optimization_insights"`
}

// FillDefaults 给缺失字段补默认值
func (a *AnalysisResult) FillDefaults() {
	if a.CompaniesMentioned == nil {
		a.CompaniesMentioned = []string{}
	}
	if a.MentionReasons == nil {
		a.MentionReasons = map[string]string{}
	}
	if a.AuthoritySignals == nil {
		a.AuthoritySignals = []string{}
	}
	if a.KeyFeatures == nil {
		a.KeyFeatures = []string{}
	}
	if a.SourcesCited == nil {
		a.SourcesCited = []string{}
	}
	if a.Sentiment == "" {
		a.Sentiment = "neutral"
	}
}
