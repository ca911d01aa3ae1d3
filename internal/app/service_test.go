package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/picklemart/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubService struct {
	name     string
	startErr error
	block    bool
	stopped  atomic.Bool
}

func (s *stubService) Name() string { return s.name }

func (s *stubService) Start(ctx context.Context) error {
	if s.block {
		<-ctx.Done()
		return nil
	}
	return s.startErr
}

func (s *stubService) Stop(context.Context) error {
	s.stopped.Store(true)
	return nil
}

func TestRunnerStopsAllServicesWhenOneFails(t *testing.T) {
	failing := &stubService{name: "http", startErr: errors.New("bind failed")}
	blocking := &stubService{name: "worker", block: true}

	err := NewRunner(failing, blocking).Run(context.Background(), time.Second, zap.NewNop().Sugar())
	require.EqualError(t, err, "bind failed")
	assert.True(t, failing.stopped.Load())
	assert.True(t, blocking.stopped.Load())
}

func TestRunnerCanceledContextIsCleanExit(t *testing.T) {
	blocking := &stubService{name: "http", block: true}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewRunner(blocking).Run(ctx, time.Second, nil)
	assert.NoError(t, err)
	assert.True(t, blocking.stopped.Load())
}

func TestRunnerWithoutServices(t *testing.T) {
	assert.Error(t, NewRunner().Run(context.Background(), time.Second, nil))
}

func TestNormalizeOptionsDefaults(t *testing.T) {
	opts := normalizeOptions(Options{})
	assert.Equal(t, ModeAll, opts.Mode)
	assert.Equal(t, 10*time.Second, opts.ShutdownTimeout)
	assert.NotNil(t, opts.Logger)
}

type orderedStop struct {
	stubService
	order *[]string
}

func (s *orderedStop) Stop(ctx context.Context) error {
	*s.order = append(*s.order, s.name)
	return s.stubService.Stop(ctx)
}

func TestRunnerStopsInReverseOrder(t *testing.T) {
	var order []string
	first := &orderedStop{stubService: stubService{name: "http", block: true}, order: &order}
	second := &orderedStop{stubService: stubService{name: "worker", block: true}, order: &order}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, NewRunner(first, nil, second).Run(ctx, time.Second, nil))
	assert.Equal(t, []string{"worker", "http"}, order)
}

func TestHTTPServiceReportsBindFailure(t *testing.T) {
	svc := NewHTTPService("256.0.0.1:0", nil)
	assert.Error(t, svc.Start(context.Background()))
	assert.Equal(t, "http", svc.Name())
}

func TestParseMode(t *testing.T) {
	cases := map[string]string{"": ModeAll, " API ": ModeAPI, "worker": ModeWorker, "all": ModeAll}
	for raw, want := range cases {
		got, err := ParseMode(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
	_, err := ParseMode("cron")
	assert.Error(t, err)
}

func TestBuildRunnerRejectsUnknownMode(t *testing.T) {
	_, _, err := BuildRunner(context.Background(), &config.Config{}, "cron")
	assert.ErrorContains(t, err, "unknown mode")
}
