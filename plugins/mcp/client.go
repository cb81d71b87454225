package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/jellydator/ttlcache/v3"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/va6996/ecochat/log"
	"github.com/va6996/ecochat/metrics"
	"github.com/va6996/ecochat/plugins"
	"github.com/va6996/ecochat/tools"
)

const (
	service        = "mcp"
	catalogKey     = "tools"
	defaultTimeout = 60 * time.Second
	defaultTTL     = 5 * time.Minute
)

var clientImplementation = &sdk.Implementation{Name: "ecochat-client", Version: "1.0.0"}

// ErrInvalidArguments is returned when arguments fail the tool's schema.
var ErrInvalidArguments = errors.New("invalid tool arguments")

// ClientConfig configures a remote tool client.
type ClientConfig struct {
	Endpoint   string
	Timeout    time.Duration
	CatalogTTL time.Duration
	// Transport overrides the streamable HTTP transport; it is called once
	// per connection attempt.
	Transport func() sdk.Transport
}

// catalogEntry is a remote tool with its resolved input schema.
type catalogEntry struct {
	tool   *sdk.Tool
	schema *jsonschema.Resolved
}

// Client invokes tools on a remote MCP service. It implements
// tools.ToolInvoker and reconnects once when the session drops.
type Client struct {
	cfg       ClientConfig
	mcpClient *sdk.Client
	session   *sdk.ClientSession
	sessionMu sync.RWMutex

	catalog   *ttlcache.Cache[string, map[string]catalogEntry]
	catalogMu sync.Mutex
}

var _ tools.ToolInvoker = (*Client)(nil)

// NewClient connects to the service described by cfg.
func NewClient(ctx context.Context, cfg ClientConfig) (*Client, error) {
	if cfg.Endpoint == "" && cfg.Transport == nil {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.CatalogTTL == 0 {
		cfg.CatalogTTL = defaultTTL
	}
	if cfg.Transport == nil {
		endpoint, timeout := cfg.Endpoint, cfg.Timeout
		cfg.Transport = func() sdk.Transport {
			return &sdk.StreamableClientTransport{
				Endpoint:   endpoint,
				HTTPClient: &http.Client{Timeout: timeout},
			}
		}
	}

	c := &Client{
		cfg:       cfg,
		mcpClient: sdk.NewClient(clientImplementation, nil),
		catalog: ttlcache.New(
			ttlcache.WithTTL[string, map[string]catalogEntry](cfg.CatalogTTL),
		),
	}
	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) connect(ctx context.Context) error {
	session, err := c.mcpClient.Connect(ctx, c.cfg.Transport(), nil)
	if err != nil {
		return &plugins.UpstreamError{Service: service, Err: fmt.Errorf("failed to connect: %w", err)}
	}

	c.sessionMu.Lock()
	if c.session != nil {
		c.session.Close()
	}
	c.session = session
	c.sessionMu.Unlock()

	log.Infof(ctx, "MCP client connected to %s", c.cfg.Endpoint)
	return nil
}

func (c *Client) currentSession(ctx context.Context) (*sdk.ClientSession, error) {
	c.sessionMu.RLock()
	session := c.session
	c.sessionMu.RUnlock()
	if session != nil {
		return session, nil
	}
	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	c.sessionMu.RLock()
	defer c.sessionMu.RUnlock()
	return c.session, nil
}

// withSession runs fn and retries it once on a fresh session when the
// connection was lost.
func withSession[T any](ctx context.Context, c *Client, fn func(*sdk.ClientSession) (T, error)) (T, error) {
	var zero T
	session, err := c.currentSession(ctx)
	if err != nil {
		return zero, err
	}
	out, err := fn(session)
	if err == nil || !isConnectionError(err) {
		return out, err
	}

	log.Warnf(ctx, "MCP connection error, reconnecting: %v", err)
	if rerr := c.connect(ctx); rerr != nil {
		return zero, fmt.Errorf("failed to reconnect: %w (original error: %w)", rerr, err)
	}
	session, err = c.currentSession(ctx)
	if err != nil {
		return zero, err
	}
	return fn(session)
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection closed") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "client is closing") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "connection reset")
}

// ListTools returns the remote tool catalog, cached for CatalogTTL.
func (c *Client) ListTools(ctx context.Context) ([]*sdk.Tool, error) {
	entries, err := c.entries(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*sdk.Tool, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.tool)
	}
	return out, nil
}

func (c *Client) entries(ctx context.Context) (map[string]catalogEntry, error) {
	c.catalogMu.Lock()
	defer c.catalogMu.Unlock()

	if item := c.catalog.Get(catalogKey); item != nil {
		return item.Value(), nil
	}

	result, err := withSession(ctx, c, func(s *sdk.ClientSession) (*sdk.ListToolsResult, error) {
		return s.ListTools(ctx, &sdk.ListToolsParams{})
	})
	if err != nil {
		return nil, &plugins.UpstreamError{Service: service, Err: err}
	}

	entries := make(map[string]catalogEntry, len(result.Tools))
	for _, t := range result.Tools {
		entries[t.Name] = catalogEntry{tool: t, schema: resolveSchema(ctx, t)}
	}
	c.catalog.Set(catalogKey, entries, ttlcache.DefaultTTL)
	log.Debugf(ctx, "MCP catalog refreshed with %d tools", len(entries))
	return entries, nil
}

// resolveSchema returns nil when the advertised schema cannot be resolved;
// such tools are called without local validation.
func resolveSchema(ctx context.Context, t *sdk.Tool) *jsonschema.Resolved {
	if t.InputSchema == nil {
		return nil
	}
	raw, err := json.Marshal(t.InputSchema)
	if err != nil {
		return nil
	}
	var schema jsonschema.Schema
	if err := json.Unmarshal(raw, &schema); err != nil {
		log.Warnf(ctx, "Unreadable input schema for %s: %v", t.Name, err)
		return nil
	}
	resolved, err := schema.Resolve(nil)
	if err != nil {
		log.Warnf(ctx, "Unresolvable input schema for %s: %v", t.Name, err)
		return nil
	}
	return resolved
}

// Invoke validates args against the tool's schema and calls it remotely.
func (c *Client) Invoke(ctx context.Context, name string, args map[string]any) (*tools.Result, error) {
	start := time.Now()
	entries, err := c.entries(ctx)
	if err != nil {
		return nil, err
	}
	entry, ok := entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", tools.ErrToolNotFound, name)
	}

	if args == nil {
		args = map[string]any{}
	}
	if entry.schema != nil {
		instance, err := jsonInstance(args)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
		}
		if err := entry.schema.Validate(instance); err != nil {
			return nil, fmt.Errorf("%w for %s: %v", ErrInvalidArguments, name, err)
		}
	}

	result, err := withSession(ctx, c, func(s *sdk.ClientSession) (*sdk.CallToolResult, error) {
		return s.CallTool(ctx, &sdk.CallToolParams{Name: name, Arguments: args})
	})
	if err != nil {
		metrics.ToolCalls.WithLabelValues(name, "upstream_error").Inc()
		return nil, &plugins.UpstreamError{Service: service, Err: err}
	}

	var parts []string
	for _, content := range result.Content {
		if text, ok := content.(*sdk.TextContent); ok {
			parts = append(parts, text.Text)
		}
	}
	res := tools.ParseResult(name, strings.Join(parts, "\n"))
	if result.IsError && res.Status != tools.StatusError {
		res.Status = tools.StatusError
	}

	metrics.ToolCalls.WithLabelValues(name, string(res.Status)).Inc()
	metrics.ToolDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	log.Debugf(ctx, "MCP tool %s returned %s", name, res.Status)
	return res, nil
}

// jsonInstance converts args into the generic form the validator expects.
func jsonInstance(args map[string]any) (any, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Close ends the session.
func (c *Client) Close() error {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()
	if c.session != nil {
		err := c.session.Close()
		c.session = nil
		return err
	}
	return nil
}
