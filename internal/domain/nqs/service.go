package nqs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultAgentTimeout bounds the remote call when Config leaves it unset.
const DefaultAgentTimeout = 3 * time.Second

var errFallbackRequested = errors.New("agent requested fallback")

// Service resolves an area to a score, preferring the remote agent.
type Service interface {
	Score(ctx context.Context, req Request) Result
}

// RemoteScorer is the out-of-process scoring agent.
type RemoteScorer interface {
	Score(ctx context.Context, req AgentRequest) (AgentResponse, error)
}

// Config tunes the fallback protocol.
type Config struct {
	AgentEnabled bool
	AgentTimeout time.Duration
}

type service struct {
	cfg      Config
	engine   *Engine
	remote   RemoteScorer
	validate *validator.Validate
	logger   *slog.Logger
}

// NewService wires the fallback protocol. remote may be nil, in which case
// every request is scored locally.
func NewService(cfg Config, engine *Engine, remote RemoteScorer, logger *slog.Logger) Service {
	if cfg.AgentTimeout <= 0 {
		cfg.AgentTimeout = DefaultAgentTimeout
	}
	return &service{
		cfg:      cfg,
		engine:   engine,
		remote:   remote,
		validate: validator.New(),
		logger:   logger.With("component", "nqs.service"),
	}
}

func (s *service) Score(ctx context.Context, req Request) Result {
	if s.cfg.AgentEnabled && s.remote != nil {
		res, err := s.scoreRemote(ctx, req)
		if err == nil {
			return res
		}
		s.logger.Warn("nqs agent unavailable, scoring locally", "city", req.City, "district", req.District, "error", err)
	}
	return s.engine.Score(Query{Name: req.District, City: req.City, Coords: req.Coordinates})
}

type agentOutcome struct {
	resp AgentResponse
	err  error
}

// scoreRemote calls the agent under a deadline. The call runs in its own
// goroutine so a scorer that ignores ctx cannot hold the request past the
// timeout; a late reply is dropped.
func (s *service) scoreRemote(ctx context.Context, req Request) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.AgentTimeout)
	defer cancel()

	done := make(chan agentOutcome, 1)
	go func() {
		resp, err := s.remote.Score(ctx, AgentRequest{
			City:        req.City,
			District:    req.District,
			Coordinates: req.Coordinates,
			Extras:      req.Extras,
		})
		done <- agentOutcome{resp: resp, err: err}
	}()

	var out agentOutcome
	select {
	case <-ctx.Done():
		return Result{}, fmt.Errorf("agent call: %w", ctx.Err())
	case out = <-done:
	}
	if out.err != nil {
		return Result{}, out.err
	}
	if err := s.checkResponse(out.resp); err != nil {
		return Result{}, err
	}

	score := *out.resp.Score
	level := strings.TrimSpace(out.resp.Level)
	if level == "" {
		level = LevelFor(score)
	}
	return Result{
		Score:         score,
		Level:         level,
		DistrictFound: true,
		Source:        SourceAgent,
		Notes:         out.resp.Notes,
	}, nil
}

func (s *service) checkResponse(resp AgentResponse) error {
	if !resp.OK {
		return errors.New("agent returned ok=false")
	}
	if resp.FallbackRequested {
		return errFallbackRequested
	}
	if err := s.validate.Struct(resp); err != nil {
		return fmt.Errorf("invalid agent payload: %w", err)
	}
	return nil
}
