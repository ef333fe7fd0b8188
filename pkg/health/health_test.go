package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiveness_AlwaysUp(t *testing.T) {
	h := NewHandler()

	rec := httptest.NewRecorder()
	h.LivenessHandler()(rec, httptest.NewRequest("GET", "/health/live", nil))

	assert.Equal(t, 200, rec.Code)
}

func TestReadiness_AllChecksUp(t *testing.T) {
	h := NewHandler()
	h.Register("postgres", func(ctx context.Context) error { return nil })
	h.Register("redis", func(ctx context.Context) error { return nil })
	h.Register("kafka", func(ctx context.Context) error { return nil })

	rec := httptest.NewRecorder()
	h.ReadinessHandler()(rec, httptest.NewRequest("GET", "/health/ready", nil))

	assert.Equal(t, 200, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StatusUp, resp.Status)
	require.Len(t, resp.Checks, 3)
	assert.Equal(t, StatusUp, resp.Checks["kafka"].Status)
}

func TestReadiness_FailingCheckReportsDown(t *testing.T) {
	h := NewHandler()
	h.Register("postgres", func(ctx context.Context) error { return nil })
	h.Register("kafka", func(ctx context.Context) error {
		return errors.New("all brokers unreachable")
	})

	rec := httptest.NewRecorder()
	h.ReadinessHandler()(rec, httptest.NewRequest("GET", "/health/ready", nil))

	assert.Equal(t, 503, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StatusDown, resp.Status)
	assert.Equal(t, StatusDown, resp.Checks["kafka"].Status)
	assert.Contains(t, resp.Checks["kafka"].Error, "unreachable")
	assert.Equal(t, StatusUp, resp.Checks["postgres"].Status)
}
