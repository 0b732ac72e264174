package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/alexanderramin/furrow/internal/app"
	"github.com/stretchr/testify/assert"
)

func TestLogUseCaseObserver(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogUseCaseObserver(slog.New(slog.NewTextHandler(&buf, nil)))

	obs.ObserveUseCase(context.Background(), UseCaseEvent{
		Name:     "advance",
		Duration: 12 * time.Millisecond,
		Success:  true,
		Fields:   map[string]any{"batch_id": "b-1"},
	})
	assert.Contains(t, buf.String(), "level=INFO")
	assert.Contains(t, buf.String(), "use_case=advance")
	assert.Contains(t, buf.String(), "duration_ms=12")
	assert.Contains(t, buf.String(), "batch_id=b-1")

	buf.Reset()
	obs.ObserveUseCase(context.Background(), UseCaseEvent{Name: "plant", Err: errors.New("boom")})
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "error=boom")

	buf.Reset()
	obs.ObserveUseCase(context.Background(), UseCaseEvent{
		Name: "advance",
		Err:  app.NewRequestError(app.ErrInvalidState, errors.New("batch is already harvested")),
	})
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "code=INVALID_STATE")
}

func TestNewLogUseCaseObserver_NilLogger(t *testing.T) {
	assert.IsType(t, NoopUseCaseObserver{}, NewLogUseCaseObserver(nil))
}

func TestObserve_RecordsOutcome(t *testing.T) {
	rec := &recordingObserver{}
	failed := errors.New("nope")
	observe(context.Background(), rec, "harvest", time.Now(), map[string]any{"from": "light"}, &failed)

	var ok error
	observe(context.Background(), rec, "harvest", time.Now(), nil, &ok)

	if assert.Len(t, rec.events, 2) {
		assert.False(t, rec.events[0].Success)
		assert.Equal(t, failed, rec.events[0].Err)
		assert.True(t, rec.events[1].Success)
	}
}
