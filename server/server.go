// Package server exposes the chat, analysis and report services over HTTP.
package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/va6996/ecochat/agents"
	logcontext "github.com/va6996/ecochat/context"
	"github.com/va6996/ecochat/metrics"
	"github.com/va6996/ecochat/plugins"
	"github.com/va6996/ecochat/tools"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

const maxBodyBytes = 1 << 20

// Options wires the services behind the HTTP routes. Models and ToolServer
// are optional.
type Options struct {
	Chat      *agents.ChatService
	Analyst   *agents.Analyst
	Reports   *agents.ReportService
	Tools     tools.ToolInvoker
	Models    plugins.ModelLister
	ModelName string

	// ToolServer is mounted at /mcp when set.
	ToolServer http.Handler

	Version        string
	DatasetRecords int
	AgentAvailable bool
	ToolMode       string
}

// Server routes HTTP requests to the services.
type Server struct {
	opts Options
	mux  *http.ServeMux
}

// New registers every route.
func New(opts Options) *Server {
	s := &Server{opts: opts, mux: http.NewServeMux()}

	s.handle("POST /chat", s.handleChat)
	s.handle("POST /analyze", s.handleAnalyze)
	s.handle("POST /report", s.handleReport)
	s.handle("GET /data-summary", s.handleDataSummary)
	s.handle("GET /health", s.handleHealth)
	s.handle("GET /models", s.handleModels)
	s.handle("GET /swagger/doc.json", s.handleSwagger)
	s.mux.Handle("GET /metrics", promhttp.Handler())
	if opts.ToolServer != nil {
		s.mux.Handle("/mcp", opts.ToolServer)
	}
	return s
}

// handle instruments h with the route pattern as label.
func (s *Server) handle(pattern string, h http.HandlerFunc) {
	labels := prometheus.Labels{"route": pattern}
	var handler http.Handler = h
	handler = promhttp.InstrumentHandlerCounter(metrics.HTTPRequests.MustCurryWith(labels), handler)
	handler = promhttp.InstrumentHandlerDuration(metrics.HTTPDuration.MustCurryWith(labels), handler)
	s.mux.Handle(pattern, handler)
}

// Handler returns the routes with CORS and request ids, served over h2c.
func (s *Server) Handler() http.Handler {
	return h2c.NewHandler(cors(logcontext.Middleware(s.mux)), &http2.Server{})
}

// ServeHTTP lets tests drive the router without the h2c wrapper.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cors(logcontext.Middleware(s.mux)).ServeHTTP(w, r)
}

// Simple CORS middleware
func cors(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Allow all origins (the chat frontend is served separately)
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID, Mcp-Session-Id")
		w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		h.ServeHTTP(w, r)
	})
}
