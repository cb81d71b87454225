// Package openaicompat provides an OpenAI-compatible model plugin for
// genkit and a plain completion client for narratives. It works against
// OpenAI itself and any server that speaks the same API.
package openaicompat

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/core/api"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/compat_oai"
	"github.com/openai/openai-go/option"
)

const (
	provider       = "openaicompat"
	DefaultBaseURL = "https://api.openai.com/v1/"
)

// Plugin registers OpenAI-compatible chat models with genkit.
type Plugin struct {
	APIKey  string
	BaseURL string
	// Models are defined at Init with multimodal and tool support.
	Models []string

	openAICompatible *compat_oai.OpenAICompatible
}

// Name implements genkit.Plugin.
func (p *Plugin) Name() string {
	return provider
}

// Init implements genkit.Plugin.
func (p *Plugin) Init(ctx context.Context) []api.Action {
	if p.APIKey == "" {
		panic("openaicompat plugin initialization failed: apiKey is required")
	}
	baseURL := p.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	if p.openAICompatible == nil {
		p.openAICompatible = &compat_oai.OpenAICompatible{}
	}
	p.openAICompatible.Opts = []option.RequestOption{
		option.WithAPIKey(p.APIKey),
		option.WithBaseURL(baseURL),
	}
	p.openAICompatible.Provider = provider

	actions := p.openAICompatible.Init(ctx)
	for _, model := range p.Models {
		actions = append(actions, p.DefineModel(model, ai.ModelOptions{
			Label:    fmt.Sprintf("OpenAI-compatible %s", model),
			Supports: &compat_oai.Multimodal,
			Versions: []string{model},
		}).(api.Action))
	}
	return actions
}

// Model returns a model by name.
func (p *Plugin) Model(g *genkit.Genkit, name string) ai.Model {
	return p.openAICompatible.Model(g, api.NewName(provider, name))
}

// DefineModel defines a model with the given ID and options.
func (p *Plugin) DefineModel(id string, opts ai.ModelOptions) ai.Model {
	return p.openAICompatible.DefineModel(provider, id, opts)
}

// ListActions returns a list of actions provided by this plugin.
func (p *Plugin) ListActions(ctx context.Context) []api.ActionDesc {
	return p.openAICompatible.ListActions(ctx)
}

// ResolveAction resolves an action by type and name.
func (p *Plugin) ResolveAction(atype api.ActionType, name string) api.Action {
	return p.openAICompatible.ResolveAction(atype, name)
}
