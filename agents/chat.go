package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/va6996/ecochat/log"
	"github.com/va6996/ecochat/metrics"
	"github.com/va6996/ecochat/router"
)

// DefaultAgentTimeout bounds one agent run.
const DefaultAgentTimeout = 30 * time.Second

// ChatService answers chat messages: help locally, everything else through
// the agent, and through the keyword router when the agent fails.
type ChatService struct {
	router   *router.Router
	agent    Responder
	direct   Responder
	recorder ChatRecorder
	Timeout  time.Duration
}

// NewChatService wires the chat paths. agent and recorder may be nil.
func NewChatService(r *router.Router, agent, direct Responder, recorder ChatRecorder) *ChatService {
	if r == nil {
		r = router.New()
	}
	return &ChatService{
		router:   r,
		agent:    agent,
		direct:   direct,
		recorder: recorder,
		Timeout:  DefaultAgentTimeout,
	}
}

// Chat answers one message. The returned answer is non-nil whenever the
// message was not empty; on an unrecoverable failure it carries
// SourceError together with the error.
func (s *ChatService) Chat(ctx context.Context, message string) (*Answer, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	answer, err := s.answer(ctx, message)
	if err != nil {
		log.Errorf(ctx, "Chat failed: %v", err)
		answer = &Answer{
			Text:   fmt.Sprintf("Sorry, I encountered an error analyzing Building 413 data: %v", err),
			Source: SourceError,
		}
	}
	metrics.ChatResponses.WithLabelValues(string(answer.Source)).Inc()

	if s.recorder != nil {
		if rerr := s.recorder.RecordChat(ctx, message, answer); rerr != nil {
			log.Warnf(ctx, "Failed to record chat: %v", rerr)
		}
	}
	return answer, err
}

func (s *ChatService) answer(ctx context.Context, message string) (*Answer, error) {
	if d, ok := s.router.Route(message); ok && d.Help() {
		return &Answer{Text: router.HelpMessage, Source: SourceLocal}, nil
	}

	if s.agent != nil {
		answer, err := s.runAgent(ctx, message)
		if err == nil {
			return answer, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		reason := fallbackReason(err)
		metrics.AgentFallbacks.WithLabelValues(reason).Inc()
		if reason == "unavailable" {
			log.Debugf(ctx, "Agent unavailable, using keyword routing")
		} else {
			log.Warnf(ctx, "Agent failed (%s), falling back to keyword routing: %v", reason, err)
		}
	}

	return s.direct.Respond(ctx, message)
}

func (s *ChatService) runAgent(ctx context.Context, message string) (*Answer, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultAgentTimeout
	}
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.agent.Respond(actx, message)
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, ErrAgentUnavailable):
		return "unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}
