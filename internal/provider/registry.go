package provider

import (
	"github.com/qs3c/aiseo_go_server/config"
)

// Registry 保存当前启用的适配器。启用与否完全由密钥是否配置决定，
// 缺密钥只是排除该服务商，不是错误。
type Registry struct {
	adapters []Adapter
	byName   map[string]Adapter
}

// NewRegistry 根据配置里的可用密钥构建注册表
func NewRegistry(cfg *config.ProvidersConfig) *Registry {
	var adapters []Adapter
	if cfg.OpenAI.Configured() {
		adapters = append(adapters, NewOpenAI(cfg.OpenAI))
	}
	if cfg.Anthropic.Configured() {
		adapters = append(adapters, NewAnthropic(cfg.Anthropic))
	}
	if cfg.Perplexity.Configured() {
		adapters = append(adapters, NewPerplexity(cfg.Perplexity))
	}
	if cfg.Google.Configured() {
		adapters = append(adapters, NewGoogle(cfg.Google))
	}
	if cfg.GoogleSearch.Configured() {
		adapters = append(adapters, NewGoogleSearch(cfg.GoogleSearch))
	}
	return NewRegistryWithAdapters(adapters...)
}

// Source 按需给出当前注册表。服务端在每次提交和 /providers 请求时
// 调用它重读凭证，改密钥不需要重启进程。
type Source func() *Registry

// StaticSource 固定注册表（CLI 一次性运行和测试场景）
func StaticSource(r *Registry) Source {
	return func() *Registry { return r }
}

// NewRegistryWithAdapters 直接给定适配器构建注册表（测试用）
func NewRegistryWithAdapters(adapters ...Adapter) *Registry {
	byName := make(map[string]Adapter, len(adapters))
	for _, a := range adapters {
		byName[a.Name()] = a
	}
	return &Registry{adapters: adapters, byName: byName}
}

// Enabled 已启用的服务商标识，保持注册顺序
func (r *Registry) Enabled() []string {
	names := make([]string, 0, len(r.adapters))
	for _, a := range r.adapters {
		names = append(names, a.Name())
	}
	return names
}

// Get 按标识取适配器
func (r *Registry) Get(name string) (Adapter, bool) {
	a, ok := r.byName[name]
	return a, ok
}

// Select 取调用方指定的子集与启用集合的交集；selected 为空返回全部。
// 未启用的标识直接忽略。
func (r *Registry) Select(selected []string) []Adapter {
	if len(selected) == 0 {
		return r.adapters
	}
	var out []Adapter
	for _, name := range selected {
		if a, ok := r.byName[name]; ok {
			out = append(out, a)
		}
	}
	return out
}
