package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"

	"switchbridge/device/procontroller"
	"switchbridge/engine"
	"switchbridge/internal/apperr"
	"switchbridge/internal/config"
	"switchbridge/internal/configpaths"
	"switchbridge/internal/log"
	"switchbridge/internal/term"
	"switchbridge/inputsource"
	"switchbridge/transport"
)

// CLI is the root command tree: "run" is the bridge itself, "config init"
// scaffolds a template, "install"/"uninstall" register a systemd unit.
type CLI struct {
	Run       RunCommand              `cmd:"" default:"withargs" help:"Run the bridge."`
	Config    config.ConfigCommand    `cmd:"" help:"Configuration file commands."`
	Install   config.InstallCommand   `cmd:"" help:"Install as a systemd service."`
	Uninstall config.UninstallCommand `cmd:"" help:"Remove the systemd service."`
}

// RunCommand wraps config.RunConfig so it can carry a kong Run method
// without the config package needing to import engine/transport/kong.
type RunCommand struct {
	config.RunConfig
}

func main() {
	userCfg := findUserConfig(os.Args[1:])
	jsonPaths, yamlPaths, tomlPaths := configpaths.ConfigCandidatePaths(userCfg)

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("switchbridge"),
		kong.Description("USB gadget bridge emulating a Nintendo Switch Pro Controller"),
		kong.UsageOnError(),
		// Load configuration from JSON/YAML/TOML in priority order; flags/env override config values.
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)

	logger, closeFiles, err := log.SetupLogger(cli.Run.Log.Level, cli.Run.Log.File)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() {
		for _, c := range closeFiles {
			_ = c.Close()
		}
	}()

	var rawLogger log.RawLogger
	if cli.Run.Log.RawFile != "" {
		f, err := os.OpenFile(cli.Run.Log.RawFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			logger.Error("failed to open raw log file", "file", cli.Run.Log.RawFile, "error", err)
			rawLogger = log.NewRaw(nil)
		} else {
			rawLogger = log.NewRaw(f)
			closeFiles = append(closeFiles, f)
		}
	} else if cli.Run.Log.Level == "trace" {
		rawLogger = log.NewRaw(os.Stdout)
	} else {
		rawLogger = log.NewRaw(nil)
	}

	kctx.Bind(logger)
	kctx.BindTo(rawLogger, (*log.RawLogger)(nil))

	err = kctx.Run()
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, apperr.ErrConfigError):
		logger.Error("configuration error", "error", err)
		os.Exit(2)
	case errors.Is(err, apperr.ErrFatalIO):
		logger.Error("fatal I/O error", "error", err)
		os.Exit(1)
	default:
		kctx.FatalIfErrorf(err)
	}
}

func findUserConfig(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if strings.HasPrefix(a, "--config=") {
			return a[len("--config="):]
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	if v := os.Getenv("SWITCHBRIDGE_CONFIG"); v != "" {
		return v
	}
	return ""
}

// Run starts the bridge: opens the gadget endpoint, builds the controller
// and input adapter from flags, and drives the Protocol Engine until an
// interrupt or a fatal Transport error. rawLogger is handed to the Transport,
// which traces every report crossing the gadget endpoint through it.
func (r *RunCommand) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	mac, err := config.ResolveMAC(r.MAC, r.MACSeed)
	if err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrConfigError, err)
	}
	accelSign, err := config.ParseAxisSign(r.IMUAccelSign)
	if err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrConfigError, err)
	}
	gyroSign, err := config.ParseAxisSign(r.IMUGyroSign)
	if err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrConfigError, err)
	}

	gadget, err := transport.Open(r.Endpoint, rawLogger)
	if err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrFatalIO, err)
	}
	defer gadget.Close()

	controller := procontroller.NewController(mac, r.FirmwareMajor, r.FirmwareMinor)

	axisCfg := inputsource.DefaultAxisConfig()
	axisCfg.AccelSign = accelSign
	axisCfg.GyroSign = gyroSign
	adapter := inputsource.New(controller.State, axisCfg)

	var status *term.Status
	if r.Status {
		status = term.Default()
		defer status.Done()
	}

	tick := time.Duration(r.TickMS) * time.Millisecond
	if tick <= 0 {
		tick = procontroller.DefaultTickMillis * time.Millisecond
	}
	eng := engine.New(gadget, controller, adapter, tick, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go adapter.Run(ctx, noopSource{})

	if status != nil {
		go runStatusLoop(ctx, status, controller)
	}

	return eng.Run(ctx)
}

// noopSource produces no events: discovering and reading a real local
// gamepad is an external collaborator (spec.md section 1's non-goal). The
// bridge still presents a valid, continuously-streamed idle controller to
// the console without one; wiring a real source means implementing
// inputsource.EventSource and passing it to adapter.Run instead.
type noopSource struct{}

func (noopSource) Events() <-chan inputsource.Event {
	return make(chan inputsource.Event)
}

func runStatusLoop(ctx context.Context, status *term.Status, controller *procontroller.Controller) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			status.Line(controller.Engine.Phase, controller.Engine.Timer, 0, 0)
		}
	}
}

