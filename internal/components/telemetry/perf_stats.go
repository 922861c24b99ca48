package telemetry

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/process"
	"go.opentelemetry.io/otel"
)

var perfMeter = otel.Meter("rollcall.perf_stats")
var cpuGauge, _ = perfMeter.Float64Gauge("process_cpu_percent")
var rssGauge, _ = perfMeter.Int64Gauge("process_rss_mb")
var heapGauge, _ = perfMeter.Int64Gauge("heap_alloc_mb")
var goroutineGauge, _ = perfMeter.Int64Gauge("goroutine_count")

// InstrumentPerfStats samples the stats of the current process every interval
// until ctx is done.
func InstrumentPerfStats(ctx context.Context, interval time.Duration) {
	proc, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err != nil {
		slog.Warn("process stats unavailable", "err", err)
	}

	go func() {
		var memStats runtime.MemStats
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if proc != nil {
					sampleProcess(ctx, proc)
				}
				runtime.ReadMemStats(&memStats)
				heapGauge.Record(ctx, int64(memStats.HeapAlloc/1_000_000))
				goroutineGauge.Record(ctx, int64(runtime.NumGoroutine()))
			case <-ctx.Done():
				return
			}
		}
	}()
}

func sampleProcess(ctx context.Context, proc *process.Process) {
	cpu, err := proc.CPUPercentWithContext(ctx)
	if err != nil {
		slog.Debug("failed to read process cpu", "err", err)
	} else {
		cpuGauge.Record(ctx, cpu)
	}

	mem, err := proc.MemoryInfoWithContext(ctx)
	if err != nil {
		slog.Debug("failed to read process memory", "err", err)
		return
	}
	rssGauge.Record(ctx, int64(mem.RSS/1_000_000))
}
