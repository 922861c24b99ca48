package chrono

import (
	"context"
	"testing"
	"time"

	"rollcall-backend/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

func TestScheduleRejectsInvalidSpec(t *testing.T) {
	s := NewCronScheduler(&telemetry.Recorder{})
	defer s.Stop(context.Background())

	err := s.Schedule("ingest", "every tuesday", func() {})
	require.ErrorContains(t, err, "schedule ingest")
}

func TestScheduleRunsJob(t *testing.T) {
	tel := &telemetry.Recorder{}
	s := NewCronScheduler(tel)

	ran := make(chan struct{}, 1)
	err := s.Schedule("ingest", "@every 1s", func() {
		select {
		case ran <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)
	require.NotEmpty(t, tel.Reports("debug", "job scheduled"))

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not run")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Stop(ctx)
	require.Empty(t, tel.Reports("warning", "stop"))
}
