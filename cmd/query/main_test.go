package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitProviders(t *testing.T) {
	assert.Nil(t, splitProviders(""))
	assert.Equal(t, []string{"openai"}, splitProviders("openai"))
	// Spaces around commas must not mangle identifiers
	assert.Equal(t, []string{"openai", "anthropic"}, splitProviders("openai, anthropic"))
	assert.Equal(t, []string{"openai", "google"}, splitProviders(" openai ,google, "))
}

func TestCollectPrompts_FromArgs(t *testing.T) {
	prompts, err := collectPrompts("", []string{"best", "seo", "tools"})
	require.NoError(t, err)
	assert.Equal(t, []string{"best seo tools"}, prompts)

	prompts, err = collectPrompts("", nil)
	require.NoError(t, err)
	assert.Empty(t, prompts)
}

func TestCollectPrompts_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.txt")
	require.NoError(t, os.WriteFile(path, []byte("first question\n\n# comment\nsecond question\n"), 0644))

	prompts, err := collectPrompts(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"first question", "second question"}, prompts)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "best_seo_tools", slug("Best SEO tools?"))
	assert.Equal(t, "query", slug("???"))
}
