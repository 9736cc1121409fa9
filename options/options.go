//go:build linux

package options

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/goombaio/namegenerator"
	"github.com/nniemeir/euclid/config"
	"github.com/nniemeir/euclid/logger"
	"github.com/nniemeir/euclid/sandbox"
	"github.com/nniemeir/euclid/version"
	"github.com/urfave/cli/v3"
)

// ParsedOptions bundles the validated sandbox configuration with the ambient
// settings that live outside SandboxConfig: the environment to exec the
// target with, and the logging setup to apply before bring-up starts.
type ParsedOptions struct {
	Config    *config.SandboxConfig
	Env       []string
	LogLevel  slog.Level
	LogFormat logger.LogFormat
}

func buildOptionsFromCLI(c *cli.Command) (*ParsedOptions, error) {
	cfg := &config.SandboxConfig{
		Hostname:    c.String("hostname"),
		Rootfs:      c.String("rootfs"),
		CPUMax:      c.String("cpu-max"),
		OverlayBase: c.String("overlay-base"),
		TmpfsSizeMB: int(c.Int("tmpfs-size-mb")),
	}

	argv := c.Args().Slice()
	if len(argv) == 0 {
		return nil, fmt.Errorf("missing command; usage: euclid [options] -- command [args...]")
	}
	cfg.Cmd = argv

	memMax, err := parseByteLimit("mem-max", c.String("mem-max"))
	if err != nil {
		return nil, err
	}
	cfg.MemMax = memMax

	memHigh, err := parseByteLimit("mem-high", c.String("mem-high"))
	if err != nil {
		return nil, err
	}
	cfg.MemHigh = memHigh

	memSwapMax, err := parseByteLimit("mem-swap-max", c.String("mem-swap-max"))
	if err != nil {
		return nil, err
	}
	cfg.MemSwapMax = memSwapMax

	pidsMax, err := parsePidsLimit(c.String("pids-max"))
	if err != nil {
		return nil, err
	}
	cfg.PidsMax = pidsMax

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logLevel, err := parseLogLevel(c.String("log-level"))
	if err != nil {
		return nil, err
	}

	logFormat, err := parseLogFormat(c.String("log-format"))
	if err != nil {
		return nil, err
	}

	var userEnv []sandbox.EnvVar
	for _, e := range c.StringSlice("env") {
		ev, err := ParseEnv(e)
		if err != nil {
			return nil, err
		}
		userEnv = append(userEnv, ev)
	}

	return &ParsedOptions{
		Config:    cfg,
		Env:       sandbox.EnvVars(MergeEnv(defaultEnvironment, userEnv)).ToStringArray(),
		LogLevel:  logLevel,
		LogFormat: logFormat,
	}, nil
}

/**
 * ParseCli parses flags into a ParsedOptions, validating the resulting
 * SandboxConfig before returning it.
 */
func ParseCli(ctx context.Context, args []string) (*ParsedOptions, error) {
	var result *ParsedOptions
	generator := namegenerator.NewNameGenerator(time.Now().UTC().UnixNano())

	cmd := &cli.Command{
		Name:    "euclid",
		Usage:   "A minimal Linux process sandbox.",
		Version: version.Version(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "rootfs",
				Required: true,
				Usage:    "Path to the read-only rootfs to use as the overlay's lower layer",
			},
			&cli.StringFlag{
				Name:  "hostname",
				Value: generator.Generate(),
				Usage: "Hostname to set inside the sandbox's UTS namespace",
			},
			&cli.StringFlag{
				Name:  "cpu-max",
				Value: "100000 100000",
				Usage: "cgroup v2 cpu.max literal (\"QUOTA PERIOD\" or \"max PERIOD\")",
			},
			&cli.StringFlag{
				Name:  "mem-max",
				Value: "512MB",
				Usage: "cgroup v2 memory.max (byte size or \"max\")",
			},
			&cli.StringFlag{
				Name:  "mem-high",
				Value: "max",
				Usage: "cgroup v2 memory.high (byte size or \"max\")",
			},
			&cli.StringFlag{
				Name:  "mem-swap-max",
				Value: "0",
				Usage: "cgroup v2 memory.swap.max (byte size or \"max\")",
			},
			&cli.StringFlag{
				Name:  "pids-max",
				Value: "64",
				Usage: "cgroup v2 pids.max (positive integer)",
			},
			&cli.StringFlag{
				Name:  "overlay-base",
				Value: "/run/euclid/overlay",
				Usage: "Path where the overlay's backing tmpfs is mounted",
			},
			&cli.IntFlag{
				Name:  "tmpfs-size-mb",
				Value: 64,
				Usage: "Size in megabytes of the tmpfs backing the overlay",
			},
			&cli.StringSliceFlag{
				Name:  "env",
				Usage: "Sets an environment variable as `KEY=VALUE` in the sandbox",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "error",
				Usage: "Log verbosity (info|warn|error)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Value: "text",
				Usage: "Log format (text|json)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			opts, err := buildOptionsFromCLI(c)
			if err != nil {
				return err
			}
			result = opts
			return nil
		},
	}

	if err := cmd.Run(ctx, args); err != nil {
		_ = cli.ShowAppHelp(cmd)
		return nil, err
	}

	if result == nil {
		os.Exit(0)
	}

	return result, nil
}
