package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/qs3c/aiseo_go_server/config"
	"github.com/qs3c/aiseo_go_server/internal/analyzer"
	"github.com/qs3c/aiseo_go_server/internal/model"
	"github.com/qs3c/aiseo_go_server/internal/provider"
)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// 命令行批量查询：不起服务，直接跑多服务商查询并落盘结果。
// 用法：query -config config.yaml -providers openai,anthropic "best seo tools"
// 或：  query -file questions.txt（每行一个问题）
func main() {
	configPath := flag.String("config", "config.yaml", "配置文件路径")
	providers := flag.String("providers", "", "逗号分隔的服务商列表，留空使用全部")
	outDir := flag.String("out", "", "结果输出目录，留空使用配置里的 results_dir")
	questionsFile := flag.String("file", "", "问题文件，每行一个问题")
	noAnalysis := flag.Bool("no-analysis", false, "跳过二次分析")
	flag.Parse()

	prompts, err := collectPrompts(*questionsFile, flag.Args())
	if err != nil {
		log.Fatalf("Failed to read questions: %v", err)
	}
	if len(prompts) == 0 {
		fmt.Fprintln(os.Stderr, "usage: query [flags] <prompt>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	registry := provider.NewRegistry(&cfg.Providers)
	adapters := registry.Select(splitProviders(*providers))
	if len(adapters) == 0 {
		log.Fatal("No provider available, check API keys in config")
	}

	analysisService := analyzer.New(cfg.Analysis)
	analyze := analysisService.Enabled() && !*noAnalysis

	dir := *outDir
	if dir == "" {
		dir = cfg.Export.ResultsDir
	}
	if dir == "" {
		dir = "results"
	}

	for _, prompt := range prompts {
		runQuery(prompt, adapters, analysisService, analyze, dir)
	}
}

// splitProviders 解析逗号分隔的服务商列表，容忍逗号前后的空格
func splitProviders(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// collectPrompts 问题来源：-file 文件每行一个，或命令行参数拼成一个
func collectPrompts(file string, args []string) ([]string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		var prompts []string
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			prompts = append(prompts, line)
		}
		return prompts, nil
	}

	prompt := strings.TrimSpace(strings.Join(args, " "))
	if prompt == "" {
		return nil, nil
	}
	return []string{prompt}, nil
}

func runQuery(prompt string, adapters []provider.Adapter, analysisService *analyzer.Analyzer, analyze bool, dir string) {
	fmt.Printf("Query: %s\n", prompt)
	fmt.Printf("Providers: %v\n\n", names(adapters))

	ctx := context.Background()
	job := &model.QueryJob{
		ID:        fmt.Sprintf("cli-%d", time.Now().UnixNano()),
		Prompt:    prompt,
		Status:    model.JobStatusProcessing,
		Results:   model.ProviderResultMap{},
		Analysis:  model.AnalysisResultMap{},
		CreatedAt: time.Now(),
	}

	for _, adapter := range adapters {
		fmt.Printf("=== %s ===\n", adapter.DisplayName())
		result := adapter.Call(ctx, prompt)
		job.Results[adapter.Name()] = *result
		printResult(result)

		if analyze && result.Success && !adapter.IsSearch() {
			analysis := analysisService.Analyze(ctx, result.Text, prompt, adapter.Name())
			job.Analysis[adapter.Name()] = *analysis
			printAnalysis(analysis)
		}
		fmt.Println()
	}

	job.Status = model.JobStatusCompleted
	now := time.Now()
	job.CompletedAt = &now

	path, err := saveResult(dir, prompt, job)
	if err != nil {
		log.Fatalf("Failed to save result: %v", err)
	}
	fmt.Printf("Results saved to %s\n\n", path)
}

func names(adapters []provider.Adapter) []string {
	out := make([]string, 0, len(adapters))
	for _, a := range adapters {
		out = append(out, a.Name())
	}
	return out
}

func printResult(result *model.ProviderResult) {
	if !result.Success {
		fmt.Printf("Error: %s\n", result.Error)
		return
	}
	if result.Hits != nil {
		fmt.Printf("Total results: %s\n", result.TotalResults)
		for i, hit := range result.Hits {
			fmt.Printf("%d. %s\n   %s\n", i+1, hit.Title, hit.Link)
		}
		return
	}
	fmt.Println(result.Text)
}

func printAnalysis(analysis *model.AnalysisResult) {
	fmt.Println("--- Analysis ---")
	fmt.Printf("Companies: %s\n", strings.Join(analysis.CompaniesMentioned, ", "))
	fmt.Printf("Authority signals: %s\n", strings.Join(analysis.AuthoritySignals, ", "))
	fmt.Printf("Sentiment: %s\n", analysis.Sentiment)
	fmt.Printf("Insights: %s\n", analysis.OptimizationInsights)
}

// saveResult 按查询内容生成可读文件名，落盘完整快照
func saveResult(dir, prompt string, job *model.QueryJob) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s_%s.json", slug(prompt), time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, name)
	return path, os.WriteFile(path, data, 0644)
}

func slug(s string) string {
	s = slugPattern.ReplaceAllString(strings.ToLower(s), "_")
	s = strings.Trim(s, "_")
	if len(s) > 50 {
		s = s[:50]
	}
	if s == "" {
		s = "query"
	}
	return s
}
