package password

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jwalitptl/jobboard-api/pkg/errors"
	"github.com/jwalitptl/jobboard-api/pkg/logger"
	"github.com/jwalitptl/jobboard-api/pkg/metrics"
	"github.com/jwalitptl/jobboard-api/pkg/strength"
)

func newTestService(t *testing.T, minLevel strength.Level) (*Service, *metrics.Metrics, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	m := metrics.New("test")
	l := logger.NewLogger(&logger.Config{Level: logger.DebugLevel, Output: &buf})
	return NewService(minLevel, m, l), m, &buf
}

func TestAssess(t *testing.T) {
	svc, m, logs := newTestService(t, strength.LevelMedium)

	resp := svc.Assess(context.Background(), "Tr0ub4dor&3")

	assert.Equal(t, 70, resp.Score)
	assert.Equal(t, strength.LevelStrong, resp.Level)
	assert.Equal(t, "Strong", resp.LevelLabel)
	assert.Equal(t, 70, resp.Meter.Percent)
	assert.Empty(t, resp.Meter.Suggestions)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.Evaluations.WithLabelValues("strong")))
	assert.Contains(t, logs.String(), "password assessed")
	assert.NotContains(t, logs.String(), "Tr0ub4dor&3")
}

func TestAssessEmptyIsNotCounted(t *testing.T) {
	svc, m, _ := newTestService(t, strength.LevelMedium)

	resp := svc.Assess(context.Background(), "")

	assert.Equal(t, 0, resp.Score)
	assert.Equal(t, strength.LevelNone, resp.Level)
	assert.Equal(t, "Not Evaluated", resp.LevelLabel)
	assert.Equal(t, 0, testutil.CollectAndCount(m.Evaluations))
}

func TestCheckPolicy(t *testing.T) {
	svc, m, _ := newTestService(t, strength.LevelMedium)
	ctx := context.Background()

	resp, err := svc.CheckPolicy(ctx, "abc12345", strength.LevelNone)
	require.NoError(t, err)
	assert.True(t, resp.Satisfied)
	assert.Equal(t, strength.LevelMedium, resp.MinLevel)

	resp, err = svc.CheckPolicy(ctx, "abc12345", strength.LevelStrong)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.False(t, resp.Satisfied)
	assert.Equal(t, 40, resp.Score)
	assert.Len(t, resp.Suggestions, 2)
	assert.True(t, errors.Is(err, ErrPolicyViolation))
	assert.Equal(t, http.StatusUnprocessableEntity, apperrors.StatusOf(err))
	assert.Equal(t, "password must be at least Strong", apperrors.MessageOf(err))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.PolicyChecks.WithLabelValues("medium", "satisfied")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.PolicyChecks.WithLabelValues("strong", "violated")))
}

func TestCheckPolicyEmptyPasswordNeverSatisfies(t *testing.T) {
	svc, _, _ := newTestService(t, strength.LevelWeak)

	resp, err := svc.CheckPolicy(context.Background(), "", strength.LevelNone)
	assert.Error(t, err)
	assert.False(t, resp.Satisfied)
}

func TestCheckPolicyUnknownLevel(t *testing.T) {
	svc, _, _ := newTestService(t, strength.LevelMedium)

	resp, err := svc.CheckPolicy(context.Background(), "abc", strength.Level("impossible"))
	assert.Nil(t, resp)
	assert.Equal(t, http.StatusBadRequest, apperrors.StatusOf(err))
}

func TestNewServiceDefaults(t *testing.T) {
	svc := NewService(strength.LevelNone, nil, nil)
	assert.Equal(t, strength.LevelMedium, svc.MinLevel())

	// works without metrics
	resp := svc.Assess(context.Background(), "Correct!Horse99$$")
	assert.Equal(t, strength.LevelVeryStrong, resp.Level)
}

func TestRules(t *testing.T) {
	svc, _, _ := newTestService(t, strength.LevelStrong)

	rules := svc.Rules()

	assert.Len(t, rules.Rules, len(strength.Rules))
	require.Len(t, rules.Thresholds, 4)
	assert.Equal(t, strength.LevelVeryStrong, rules.Thresholds[3].Level)
	assert.Equal(t, 80, rules.Thresholds[3].MinScore)
	assert.Equal(t, strength.LevelStrong, rules.MinLevel)
}
