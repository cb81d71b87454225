package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/swaggo/swag"
	"github.com/va6996/ecochat/agents"
	"github.com/va6996/ecochat/log"
	"github.com/va6996/ecochat/plugins/building"
	"github.com/va6996/ecochat/report"

	_ "github.com/va6996/ecochat/docs"
)

// Analysis types accepted by /analyze. Anything else is a free query.
const (
	AnalysisPeriod          = "period"
	AnalysisRecommendations = "recommendations"
	AnalysisCompare         = "compare"
)

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Response string   `json:"response"`
	Status   string   `json:"status"`
	Source   string   `json:"source"`
	Tools    []string `json:"tools,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// handleChat godoc
// @Summary Answer a chat message about Building 413
// @Tags chat
// @Accept json
// @Produce json
// @Param request body ChatRequest true "Chat message"
// @Success 200 {object} ChatResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ChatResponse
// @Router /chat [post]
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req ChatRequest
	if err := decode(r, w, &req); err != nil {
		writeError(ctx, w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(ctx, w, http.StatusBadRequest, "No message provided", nil)
		return
	}

	answer, err := s.opts.Chat.Chat(ctx, req.Message)
	if answer == nil {
		writeError(ctx, w, statusOf(err), "Failed to answer message", err)
		return
	}
	resp := ChatResponse{
		Response: answer.Text,
		Status:   "success",
		Source:   string(answer.Source),
		Tools:    answer.Tools,
	}
	code := http.StatusOK
	if err != nil {
		code = statusOf(err)
		resp.Status = "error"
		resp.Error = err.Error()
	}
	writeJSON(ctx, w, code, resp)
}

type AnalyzeRequest struct {
	Type         string `json:"type"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	Period1Start string `json:"period1_start"`
	Period1End   string `json:"period1_end"`
	Period2Start string `json:"period2_start"`
	Period2End   string `json:"period2_end"`
	Query        string `json:"query"`
}

type AnalyzeResponse struct {
	Result       string   `json:"result"`
	AnalysisType string   `json:"analysis_type"`
	Status       string   `json:"status"`
	Source       string   `json:"source"`
	Tools        []string `json:"tools,omitempty"`
}

// handleAnalyze godoc
// @Summary Run a canned sustainability analysis
// @Tags analysis
// @Accept json
// @Produce json
// @Param request body AnalyzeRequest true "Analysis request"
// @Success 200 {object} AnalyzeResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /analyze [post]
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req AnalyzeRequest
	if err := decode(r, w, &req); err != nil {
		writeError(ctx, w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	var (
		answer *agents.Answer
		err    error
	)
	switch req.Type {
	case AnalysisPeriod:
		if req.StartDate == "" || req.EndDate == "" {
			writeError(ctx, w, http.StatusBadRequest, "start_date and end_date required", nil)
			return
		}
		answer, err = s.opts.Analyst.AnalyzePeriod(ctx, agents.Period{Start: req.StartDate, End: req.EndDate})
	case AnalysisRecommendations:
		answer, err = s.opts.Analyst.Recommendations(ctx)
	case AnalysisCompare:
		if req.Period1Start == "" || req.Period1End == "" || req.Period2Start == "" || req.Period2End == "" {
			writeError(ctx, w, http.StatusBadRequest, "All period dates required", nil)
			return
		}
		answer, err = s.opts.Analyst.ComparePeriods(ctx,
			agents.Period{Start: req.Period1Start, End: req.Period1End},
			agents.Period{Start: req.Period2Start, End: req.Period2End})
	default:
		answer, err = s.opts.Analyst.Query(ctx, req.Query)
	}
	if err != nil {
		log.Errorf(ctx, "Analysis %q failed: %v", req.Type, err)
		writeError(ctx, w, statusOf(err), analysisMessage(err), err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, AnalyzeResponse{
		Result:       answer.Text,
		AnalysisType: req.Type,
		Status:       "success",
		Source:       string(answer.Source),
		Tools:        answer.Tools,
	})
}

func analysisMessage(err error) string {
	if statusOf(err) == http.StatusBadRequest {
		return err.Error()
	}
	return "Analysis failed"
}

type ReportRequest struct {
	Query  string `json:"query"`
	Type   string `json:"type"`
	Format string `json:"format"`
}

// handleReport godoc
// @Summary Generate a narrated sustainability report
// @Tags report
// @Accept json
// @Produce json
// @Param request body ReportRequest false "Report request"
// @Success 200 {object} agents.GeneratedReport
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /report [post]
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req ReportRequest
	if err := decode(r, w, &req); err != nil {
		writeError(ctx, w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}
	format, err := report.ParseFormat(req.Format)
	if err != nil {
		writeError(ctx, w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	rep, err := s.opts.Reports.Generate(ctx, agents.ReportRequest{Query: req.Query, Type: req.Type, Format: format})
	if err != nil {
		log.Errorf(ctx, "Report generation failed: %v", err)
		msg := "Internal server error"
		if errors.Is(err, agents.ErrAnalysisFailed) {
			msg = "Failed to analyze building data"
		}
		writeError(ctx, w, statusOf(err), msg, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, rep)
}

type DataSummaryResponse struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

// handleDataSummary godoc
// @Summary Summarise the available sensor data
// @Tags data
// @Produce json
// @Success 200 {object} DataSummaryResponse
// @Router /data-summary [get]
func (s *Server) handleDataSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res, err := s.opts.Tools.Invoke(ctx, building.DataSummaryTool, nil)
	if err != nil {
		writeError(ctx, w, statusOf(err), "Failed to get data summary", err)
		return
	}
	if res.Data == nil {
		writeError(ctx, w, http.StatusInternalServerError, "Failed to get data summary", errors.New(res.Message))
		return
	}
	writeJSON(ctx, w, http.StatusOK, DataSummaryResponse{Status: "success", Data: res.Data})
}

type HealthResponse struct {
	Status         string `json:"status"`
	Service        string `json:"service"`
	Version        string `json:"version"`
	DatasetRecords int    `json:"dataset_records"`
	AgentAvailable bool   `json:"agent_available"`
	ToolMode       string `json:"tool_mode"`
}

// handleHealth godoc
// @Summary Service health
// @Tags ops
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, HealthResponse{
		Status:         "healthy",
		Service:        "Building 413 eco-report service",
		Version:        s.opts.Version,
		DatasetRecords: s.opts.DatasetRecords,
		AgentAvailable: s.opts.AgentAvailable,
		ToolMode:       s.opts.ToolMode,
	})
}

type ModelsResponse struct {
	Status  string   `json:"status"`
	Current string   `json:"current"`
	Models  []string `json:"models"`
}

// handleModels godoc
// @Summary List the models of the narrative backend
// @Tags ops
// @Produce json
// @Success 200 {object} ModelsResponse
// @Failure 503 {object} ErrorResponse
// @Router /models [get]
func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.opts.Models == nil {
		writeError(ctx, w, http.StatusServiceUnavailable, "Model listing is not supported by the configured backend", nil)
		return
	}
	models, err := s.opts.Models.ListModels(ctx)
	if err != nil {
		log.Warnf(ctx, "Listing models failed: %v", err)
		writeError(ctx, w, statusOf(err), "Failed to list models", err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, ModelsResponse{Status: "success", Current: s.opts.ModelName, Models: models})
}

func (s *Server) handleSwagger(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, "Failed to read API docs", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write([]byte(doc)); err != nil {
		log.Warnf(r.Context(), "Failed to write API docs: %v", err)
	}
}
