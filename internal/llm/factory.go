package llm

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/auralab/aura-bench/internal/config"
)

// ProviderFromConfig resolves a provider by name, or the configured default
// when name is empty. A model override replaces the configured model.
func ProviderFromConfig(cfg *config.Config, name string, model string) (Provider, error) {
	if cfg == nil {
		return nil, errors.New("llm: nil config")
	}

	key := normalizeProviderName(name)
	if key == "" {
		key = normalizeProviderName(cfg.LLM.DefaultProvider)
	}
	if key == "" {
		return nil, errors.New("llm: no provider configured")
	}

	pcfg, ok := cfg.LLM.Providers[key]
	if !ok {
		available := make([]string, 0, len(cfg.LLM.Providers))
		for k := range cfg.LLM.Providers {
			available = append(available, k)
		}
		sort.Strings(available)
		return nil, fmt.Errorf("llm: provider %q not configured (available: %s)", key, strings.Join(available, ", "))
	}
	if strings.TrimSpace(pcfg.APIKey) == "" {
		return nil, fmt.Errorf("llm: provider %q has no API key", key)
	}

	m := strings.TrimSpace(model)
	if m == "" {
		m = strings.TrimSpace(pcfg.Model)
	}

	switch key {
	case "claude":
		return NewClaudeProvider(pcfg.APIKey, pcfg.BaseURL, m), nil
	case "openai":
		return NewOpenAIProvider(pcfg.APIKey, pcfg.BaseURL, m), nil
	default:
		return nil, fmt.Errorf("llm: unsupported provider %q", key)
	}
}

func normalizeProviderName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "anthropic" {
		return "claude"
	}
	return name
}
