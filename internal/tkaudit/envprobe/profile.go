package envprobe

import (
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// ResourceUsage is the wall-clock and memory delta one profiled function
// consumed.
type ResourceUsage struct {
	Elapsed       time.Duration
	RSSDeltaBytes int64
}

// ProfileFunc runs fn and logs its wall-clock time and resident-set-size
// delta under the given name. Memory readings are best effort; a host
// where the process tree is unreadable still profiles wall time.
func ProfileFunc(logger *slog.Logger, name string, fn func() error) (ResourceUsage, error) {
	var before int64
	proc, procErr := process.NewProcess(int32(os.Getpid()))
	if procErr == nil {
		if mi, err := proc.MemoryInfo(); err == nil {
			before = int64(mi.RSS)
		}
	}

	start := time.Now()
	err := fn()
	usage := ResourceUsage{Elapsed: time.Since(start)}

	if procErr == nil {
		if mi, memErr := proc.MemoryInfo(); memErr == nil {
			usage.RSSDeltaBytes = int64(mi.RSS) - before
		}
	}

	logger.Debug("profiled stage",
		slog.String("stage", name),
		slog.Duration("elapsed", usage.Elapsed),
		slog.Int64("rss_delta_bytes", usage.RSSDeltaBytes),
	)
	return usage, err
}
