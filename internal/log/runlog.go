package log

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/gosimple/slug"
	slogmulti "github.com/samber/slog-multi"
)

// SetupRunLog tees the contextual logger into a per-run transcript file
// under dir, named after the target VPC and the run's start time. An empty
// dir is a no-op. The returned close func releases the file; call it after
// the run's last log line.
func SetupRunLog(ctx context.Context, dir, vpcID string) (context.Context, func(), error) {
	if dir == "" {
		return ctx, func() {}, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ctx, func() {}, fmt.Errorf("creating transcript directory: %w", err)
	}

	name := fmt.Sprintf("%s-%s.log",
		slug.Make(vpcID),
		time.Now().UTC().Format("20060102T150405Z"),
	)
	path := filepath.Join(dir, name)

	file, err := os.Create(path)
	if err != nil {
		return ctx, func() {}, fmt.Errorf("creating transcript file: %w", err)
	}

	// The transcript keeps everything down to debug regardless of what the
	// console handler shows.
	fileHandler := slog.NewTextHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug})
	handler := slogmulti.Fanout(clog.FromContext(ctx).Handler(), fileHandler)
	ctx = clog.WithLogger(ctx, clog.New(handler))

	clog.InfoContext(ctx, "writing teardown transcript", "path", path)
	return ctx, func() {
		if err := file.Close(); err != nil {
			clog.WarnContext(ctx, "failed to close transcript file", "path", path, "error", err)
		}
	}, nil
}
