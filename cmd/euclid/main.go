//go:build linux

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/nniemeir/euclid/logger"
	"github.com/nniemeir/euclid/options"
	"github.com/nniemeir/euclid/sandbox"
)

func main() {
	opts, err := options.ParseCli(context.Background(), os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "parsing error:", err)
		os.Exit(1)
	}

	log := logger.CreateLogger(&logger.LoggerOpts{
		LogLevel:  opts.LogLevel,
		LogFormat: opts.LogFormat,
	})
	log.Info("starting sandbox", slog.String("hostname", opts.Config.Hostname), slog.Any("cmd", opts.Config.Cmd))

	box, err := sandbox.NewSandbox(opts.Config, opts.Env)
	if err != nil {
		log.Error("failed to create sandbox", slog.Any("err", err))
		os.Exit(1)
	}
	log.Info("sandbox running", slog.String("id", box.ID()), slog.Int("pid", box.PID()))

	result, err := box.Wait()
	if err != nil {
		log.Error("failed waiting for sandbox", slog.Any("err", err))
		os.Exit(1)
	}

	if result.Signaled {
		if result.SeccompKilled {
			log.Error("sandboxed process killed by seccomp filter", slog.String("id", box.ID()))
		} else {
			log.Error("sandboxed process terminated by signal", slog.String("id", box.ID()), slog.String("signal", result.Signal.String()))
		}
		os.Exit(128 + int(result.Signal))
	}

	os.Exit(result.ExitCode)
}
