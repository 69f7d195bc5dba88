package password

import (
	"context"
	"errors"
	"fmt"

	"github.com/jwalitptl/jobboard-api/internal/model"
	apperrors "github.com/jwalitptl/jobboard-api/pkg/errors"
	"github.com/jwalitptl/jobboard-api/pkg/logger"
	"github.com/jwalitptl/jobboard-api/pkg/metrics"
	"github.com/jwalitptl/jobboard-api/pkg/strength"
)

var ErrPolicyViolation = errors.New("password does not meet the required strength")

const (
	outcomeSatisfied = "satisfied"
	outcomeViolated  = "violated"
)

type Service struct {
	minLevel strength.Level
	metrics  *metrics.Metrics
	logger   *logger.Logger
}

func NewService(minLevel strength.Level, m *metrics.Metrics, l *logger.Logger) *Service {
	if !minLevel.Valid() {
		minLevel = strength.LevelMedium
	}
	if l == nil {
		l = logger.NewLogger(nil)
	}
	return &Service{
		minLevel: minLevel,
		metrics:  m,
		logger:   l,
	}
}

// MinLevel returns the configured policy level
func (s *Service) MinLevel() strength.Level {
	return s.minLevel
}

// Assess evaluates a password and builds the meter shown next to the field
func (s *Service) Assess(ctx context.Context, password string) *model.StrengthResponse {
	a := s.evaluate(ctx, password)

	return &model.StrengthResponse{
		Assessment: a,
		LevelLabel: a.Level.Label(),
		Meter:      strength.NewMeter(a),
	}
}

// CheckPolicy reports whether password reaches minLevel. A zero minLevel means
// the configured default. The response is returned even when the policy is violated.
func (s *Service) CheckPolicy(ctx context.Context, password string, minLevel strength.Level) (*model.PolicyResponse, error) {
	if minLevel == strength.LevelNone {
		minLevel = s.minLevel
	}
	if !minLevel.Valid() {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("unknown strength level %q", minLevel), nil)
	}

	a := s.evaluate(ctx, password)
	satisfied := a.Level.AtLeast(minLevel)

	resp := &model.PolicyResponse{
		Score:       a.Score,
		Level:       a.Level,
		MinLevel:    minLevel,
		Satisfied:   satisfied,
		Suggestions: strength.NewMeter(a).Suggestions,
	}

	outcome := outcomeSatisfied
	if !satisfied {
		outcome = outcomeViolated
	}
	if s.metrics != nil {
		s.metrics.PolicyChecks.WithLabelValues(string(minLevel), outcome).Inc()
	}

	if !satisfied {
		return resp, apperrors.NewUnprocessable(
			fmt.Sprintf("password must be at least %s", minLevel.Label()),
			ErrPolicyViolation,
		)
	}
	return resp, nil
}

// Rules describes the rule table for clients that render the checklist up front
func (s *Service) Rules() *model.RulesResponse {
	levels := []struct {
		level strength.Level
		min   int
	}{
		{strength.LevelWeak, 0},
		{strength.LevelMedium, strength.MediumThreshold},
		{strength.LevelStrong, strength.StrongThreshold},
		{strength.LevelVeryStrong, strength.VeryStrongThreshold},
	}

	thresholds := make([]model.LevelThreshold, 0, len(levels))
	for _, l := range levels {
		thresholds = append(thresholds, model.LevelThreshold{
			Level:    l.level,
			Label:    l.level.Label(),
			MinScore: l.min,
			Color:    strength.ColorFor(l.level),
		})
	}

	return &model.RulesResponse{
		Rules:      strength.DescribeRules(),
		Thresholds: thresholds,
		MinLevel:   s.minLevel,
	}
}

// evaluate never logs the password itself
func (s *Service) evaluate(ctx context.Context, password string) strength.Assessment {
	a := strength.Evaluate(password)

	if s.metrics != nil && a.Level != strength.LevelNone {
		s.metrics.Evaluations.WithLabelValues(string(a.Level)).Inc()
		s.metrics.ScoreObserved.Observe(float64(a.Score))
	}

	logger.FromContext(ctx, s.logger).Debug("password assessed",
		"score", a.Score,
		"strength", string(a.Level),
	)

	return a
}
