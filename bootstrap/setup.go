// Package bootstrap builds the application graph from configuration.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	gkollama "github.com/firebase/genkit/go/plugins/ollama"
	"github.com/va6996/ecochat/agents"
	"github.com/va6996/ecochat/config"
	"github.com/va6996/ecochat/dataset"
	"github.com/va6996/ecochat/log"
	"github.com/va6996/ecochat/orm"
	"github.com/va6996/ecochat/plugins"
	"github.com/va6996/ecochat/plugins/building"
	"github.com/va6996/ecochat/plugins/core"
	"github.com/va6996/ecochat/plugins/gemini"
	"github.com/va6996/ecochat/plugins/mcp"
	"github.com/va6996/ecochat/plugins/ollama"
	"github.com/va6996/ecochat/plugins/openaicompat"
	"github.com/va6996/ecochat/router"
	"github.com/va6996/ecochat/server"
	"github.com/va6996/ecochat/tools"
	"gorm.io/gorm"
)

// Version is reported by /health and the tool server.
var Version = "dev"

// Tool modes reported by /health.
const (
	ToolModeLocal  = "local"
	ToolModeRemote = "remote"
)

// App holds the initialized components of the application
type App struct {
	Config   *config.Config
	Dataset  *dataset.Dataset
	Genkit   *genkit.Genkit
	Registry *tools.Registry
	Model    ai.Model

	Invoker    tools.ToolInvoker
	ToolMode   string
	ToolServer *mcp.Server

	LLM       plugins.LLMClient
	ModelName string
	Models    plugins.ModelLister
	DB        *gorm.DB

	Agent   *agents.EcoAgent
	Direct  *agents.DirectResponder
	Chat    *agents.ChatService
	Analyst *agents.Analyst
	Reports *agents.ReportService

	closers []func() error
}

// Setup initializes the application components based on the configuration
func Setup(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}

	// 1. Dataset. A missing file leaves the service up with no data.
	app.Dataset = dataset.Open(ctx, cfg.Dataset.Path)
	anchor := time.Now
	if _, last, ok := app.Dataset.All().Span(); ok {
		anchor = func() time.Time { return last }
	}

	// 2. Genkit with the agent model
	gk, model, err := initGenkit(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.Genkit, app.Model = gk, model

	// 3. Tools
	app.Registry = tools.NewRegistry()
	building.NewClient(app.Dataset, gk, app.Registry)
	core.NewClient(gk, app.Registry, anchor)
	app.ToolServer = mcp.NewServer(app.Registry, Version)

	app.Invoker, app.ToolMode = app.Registry, ToolModeLocal
	if cfg.Tools.RemoteURL != "" {
		remote, err := mcp.NewClient(ctx, mcp.ClientConfig{
			Endpoint:   cfg.Tools.RemoteURL,
			CatalogTTL: cfg.Tools.CatalogTTL,
		})
		if err != nil {
			log.Warnf(ctx, "Remote tool server %s unavailable, using local tools: %v", cfg.Tools.RemoteURL, err)
		} else {
			log.Infof(ctx, "Invoking tools through %s", cfg.Tools.RemoteURL)
			app.Invoker, app.ToolMode = remote, ToolModeRemote
			app.closers = append(app.closers, remote.Close)
		}
	}

	// 4. Narrative client
	app.initLLM(ctx)

	// 5. Persistence is optional
	if db, err := orm.Open(cfg.Database.Driver, cfg.Database.DSN); err != nil {
		log.Warnf(ctx, "Database unavailable, narratives will not be cached: %v", err)
	} else {
		app.DB = db
		if n, err := orm.CleanupCache(db, time.Now()); err != nil {
			log.Warnf(ctx, "Failed to clean narrative cache: %v", err)
		} else if n > 0 {
			log.Infof(ctx, "Removed %d expired narratives", n)
		}
	}

	// 6. Agents
	log.Info(ctx, "Initializing agents...")
	r := router.New()
	app.Agent = agents.NewEcoAgent(gk, app.Registry, model)
	app.Direct = agents.NewDirectResponder(r, app.Invoker)

	app.Chat = agents.NewChatService(r, app.Agent, app.Direct, agents.NewDBRecorder(app.DB))
	app.Chat.Timeout = cfg.AI.AgentTimeout

	app.Analyst = agents.NewAnalyst(app.Agent, app.Invoker, app.Direct)
	app.Analyst.Timeout = cfg.AI.AgentTimeout

	app.Reports = agents.NewReportService(app.Invoker, app.LLM, app.ModelName, app.DB)
	app.Reports.Timeout = cfg.AI.NarrativeTimeout
	if cfg.Database.NarrativeTTL > 0 {
		app.Reports.CacheTTL = cfg.Database.NarrativeTTL
	}

	log.Infof(ctx, "Loaded %d records, agent available: %t, tools: %s", app.Dataset.Len(), app.Agent.Available(), app.ToolMode)
	return app, nil
}

func initGenkit(ctx context.Context, cfg *config.Config) (*genkit.Genkit, ai.Model, error) {
	switch cfg.AI.Plugin {
	case "ollama", "":
		log.Infof(ctx, "Using Ollama Plugin (Model: %s)...", cfg.AI.Ollama.Model)
		ollamaPlugin := &gkollama.Ollama{
			ServerAddress: cfg.AI.Ollama.BaseURL,
		}
		gk := genkit.Init(ctx, genkit.WithPlugins(ollamaPlugin))

		// Tool support has to be declared explicitly for Ollama models
		model := ollamaPlugin.DefineModel(gk, gkollama.ModelDefinition{
			Name: cfg.AI.Ollama.Model,
			Type: "chat",
		}, &ai.ModelOptions{
			Supports: &ai.ModelSupports{
				Multiturn:  true,
				SystemRole: true,
				Tools:      true,
				Media:      false,
			},
		})
		return gk, model, nil

	case "gemini":
		log.Info(ctx, "Using Gemini Plugin...")
		if cfg.AI.Gemini.APIKey == "" {
			log.Warn(ctx, "GEMINI_API_KEY is not set, the agent is disabled")
			return genkit.Init(ctx), nil, nil
		}
		gk := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{
			APIKey: cfg.AI.Gemini.APIKey,
		}))
		return gk, googlegenai.GoogleAIModel(gk, cfg.AI.Gemini.Model), nil

	case "openai":
		log.Infof(ctx, "Using OpenAI-compatible Plugin (Model: %s)...", cfg.AI.OpenAI.Model)
		if cfg.AI.OpenAI.APIKey == "" {
			log.Warn(ctx, "OPENAI_API_KEY is not set, the agent is disabled")
			return genkit.Init(ctx), nil, nil
		}
		p := &openaicompat.Plugin{
			APIKey:  cfg.AI.OpenAI.APIKey,
			BaseURL: cfg.AI.OpenAI.BaseURL,
			Models:  []string{cfg.AI.OpenAI.Model},
		}
		gk := genkit.Init(ctx, genkit.WithPlugins(p))
		return gk, p.Model(gk, cfg.AI.OpenAI.Model), nil

	default:
		return nil, nil, fmt.Errorf("unknown AI_PLUGIN %q (want ollama, gemini or openai)", cfg.AI.Plugin)
	}
}

// initLLM picks the narrative client matching the agent backend. Failures
// leave LLM nil and reports fall back to the formatter.
func (a *App) initLLM(ctx context.Context) {
	cfg := a.Config.AI
	switch cfg.Plugin {
	case "gemini":
		c, err := gemini.NewClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			log.Warnf(ctx, "Gemini narratives disabled: %v", err)
			return
		}
		a.LLM, a.ModelName = c, c.Model
		a.closers = append(a.closers, c.Close)
	case "openai":
		c, err := openaicompat.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model)
		if err != nil {
			log.Warnf(ctx, "OpenAI narratives disabled: %v", err)
			return
		}
		a.LLM, a.Models, a.ModelName = c, c, cfg.OpenAI.Model
	default:
		c := ollama.NewClient(cfg.Ollama.BaseURL, cfg.Ollama.Model)
		a.LLM, a.Models, a.ModelName = c, c, c.Model
	}
}

// Server builds the HTTP facade over the app's services.
func (a *App) Server() *server.Server {
	return server.New(server.Options{
		Chat:           a.Chat,
		Analyst:        a.Analyst,
		Reports:        a.Reports,
		Tools:          a.Invoker,
		Models:         a.Models,
		ModelName:      a.ModelName,
		ToolServer:     a.ToolServer.Handler(),
		Version:        Version,
		DatasetRecords: a.Dataset.Len(),
		AgentAvailable: a.Agent.Available(),
		ToolMode:       a.ToolMode,
	})
}

// Close releases remote sessions and clients.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}
