package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Redis     RedisConfig     `mapstructure:"redis"`
	OSS       OSSConfig       `mapstructure:"oss"`
	Export    ExportConfig    `mapstructure:"export"`
	Retention RetentionConfig `mapstructure:"retention"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

type ProvidersConfig struct {
	OpenAI       LLMConfig          `mapstructure:"openai"`
	Anthropic    LLMConfig          `mapstructure:"anthropic"`
	Perplexity   LLMConfig          `mapstructure:"perplexity"`
	Google       LLMConfig          `mapstructure:"google"`
	GoogleSearch GoogleSearchConfig `mapstructure:"google_search"`
}

// LLMConfig 单个对话型服务商的配置
type LLMConfig struct {
	APIKey         string  `mapstructure:"api_key"`
	Model          string  `mapstructure:"model"`
	MaxTokens      int     `mapstructure:"max_tokens"`
	Temperature    float64 `mapstructure:"temperature"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
}

type GoogleSearchConfig struct {
	APIKey         string `mapstructure:"api_key"`
	CX             string `mapstructure:"cx"`
	NumResults     int    `mapstructure:"num_results"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type AnalysisConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	APIKey         string  `mapstructure:"api_key"`
	Model          string  `mapstructure:"model"`
	MaxTokens      int     `mapstructure:"max_tokens"`
	Temperature    float64 `mapstructure:"temperature"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	MaxInputChars  int     `mapstructure:"max_input_chars"`
	CSVPath        string  `mapstructure:"csv_path"`
}

type StorageConfig struct {
	Driver   string         `mapstructure:"driver"` // memory, sqlite, mysql
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Database DatabaseConfig `mapstructure:"database"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	BucketName      string `mapstructure:"bucket_name"`
	CDNDomain       string `mapstructure:"cdn_domain"`
}

type ExportConfig struct {
	ResultsDir string `mapstructure:"results_dir"`
}

type RetentionConfig struct {
	Enabled      bool `mapstructure:"enabled"`
	MaxAgeHours  int  `mapstructure:"max_age_hours"`
	SweepMinutes int  `mapstructure:"sweep_minutes"`
}

func Load(configPath string) (*Config, error) {
	// 优先尝试读取 config.local.yaml（包含真实密钥，不提交到git）
	dir := filepath.Dir(configPath)
	localConfigPath := filepath.Join(dir, "config.local.yaml")

	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// 采样温度走 viper 默认值：显式配 0 是合法取值，不能当缺省覆盖
	viper.SetDefault("providers.openai.temperature", 0.7)
	viper.SetDefault("providers.anthropic.temperature", 0.7)
	viper.SetDefault("providers.perplexity.temperature", 0.7)
	viper.SetDefault("providers.google.temperature", 0.7)
	viper.SetDefault("analysis.temperature", 0.3)

	// 环境变量覆盖
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 兼容 .env 风格的变量名，方便与旧版部署脚本共用密钥
	viper.BindEnv("providers.openai.api_key", "OPENAI_API_KEY")
	viper.BindEnv("providers.openai.model", "OPENAI_MODEL")
	viper.BindEnv("providers.anthropic.api_key", "ANTHROPIC_API_KEY")
	viper.BindEnv("providers.anthropic.model", "ANTHROPIC_MODEL")
	viper.BindEnv("providers.perplexity.api_key", "PERPLEXITY_API_KEY")
	viper.BindEnv("providers.perplexity.model", "PERPLEXITY_MODEL")
	viper.BindEnv("providers.google.api_key", "GOOGLE_API_KEY")
	viper.BindEnv("providers.google.model", "GOOGLE_MODEL")
	viper.BindEnv("providers.google_search.api_key", "GOOGLE_SEARCH_API_KEY")
	viper.BindEnv("providers.google_search.cx", "GOOGLE_SEARCH_CX")
	viper.BindEnv("analysis.enabled", "ANALYZE_RESPONSES")
	viper.BindEnv("analysis.model", "ANALYSIS_MODEL")
	viper.BindEnv("analysis.csv_path", "ANALYSIS_CSV_PATH")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Providers.OpenAI.Model == "" {
		c.Providers.OpenAI.Model = "gpt-4o-mini"
	}
	if c.Providers.Anthropic.Model == "" {
		c.Providers.Anthropic.Model = "claude-3-5-sonnet-20241022"
	}
	if c.Providers.Perplexity.Model == "" {
		c.Providers.Perplexity.Model = "llama-3.1-sonar-small-128k-online"
	}
	if c.Providers.Google.Model == "" {
		c.Providers.Google.Model = "gemini-2.5-flash"
	}
	for _, llm := range []*LLMConfig{
		&c.Providers.OpenAI, &c.Providers.Anthropic,
		&c.Providers.Perplexity, &c.Providers.Google,
	} {
		if llm.MaxTokens <= 0 {
			llm.MaxTokens = 1000
		}
		if llm.TimeoutSeconds <= 0 {
			llm.TimeoutSeconds = 60
		}
	}
	if c.Providers.GoogleSearch.NumResults <= 0 {
		c.Providers.GoogleSearch.NumResults = 10
	}
	if c.Providers.GoogleSearch.TimeoutSeconds <= 0 {
		c.Providers.GoogleSearch.TimeoutSeconds = 30
	}
	if c.Analysis.Model == "" {
		c.Analysis.Model = "gpt-4.1"
	}
	if c.Analysis.MaxTokens <= 0 {
		c.Analysis.MaxTokens = 4000
	}
	if c.Analysis.TimeoutSeconds <= 0 {
		c.Analysis.TimeoutSeconds = 60
	}
	if c.Analysis.MaxInputChars <= 0 {
		c.Analysis.MaxInputChars = 5000
	}
	// 分析默认复用 OpenAI 的密钥
	if c.Analysis.APIKey == "" {
		c.Analysis.APIKey = c.Providers.OpenAI.APIKey
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Retention.MaxAgeHours <= 0 {
		c.Retention.MaxAgeHours = 24
	}
	if c.Retention.SweepMinutes <= 0 {
		c.Retention.SweepMinutes = 60
	}
}

// Configured 判断密钥是否真实可用（排除模板占位值）
func (c LLMConfig) Configured() bool {
	return !IsPlaceholderKey(c.APIKey)
}

func (c GoogleSearchConfig) Configured() bool {
	return !IsPlaceholderKey(c.APIKey) && !IsPlaceholderKey(c.CX)
}

// IsPlaceholderKey 识别 .env 模板里的占位密钥
func IsPlaceholderKey(key string) bool {
	if key == "" {
		return true
	}
	for _, prefix := range []string{"your-", "sk-your", "pplx-your"} {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}
