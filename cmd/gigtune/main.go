package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gigtune/gigtune/internal/app"
	"github.com/gigtune/gigtune/internal/bus"
	"github.com/gigtune/gigtune/internal/config"
	"github.com/gigtune/gigtune/internal/realtime"
	"github.com/gigtune/gigtune/internal/session"
	"github.com/gigtune/gigtune/internal/tui"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const startTimeout = 15 * time.Second

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	configFlag := flag.String("config", "", "config file (default $GIGTUNE_HOME/config.toml)")
	emailFlag := flag.String("email", "", "log in as this musician on start")
	flag.Parse()

	cfgPath := *configFlag
	if cfgPath == "" {
		cfgPath = config.Path()
	}
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	profile := config.ResolveProfile(*profileFlag, cfg)
	if err := config.ValidateName(profile); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	var (
		mgr    *session.Manager
		b      *bus.Bus
		ch     *realtime.Channel
		logger *zap.Logger
	)
	fxApp := fx.New(
		app.Module(app.Params{Profile: profile, ConfigPath: cfgPath, Quiet: true}),
		app.FxLogger(),
		fx.Populate(&mgr, &b, &ch, &logger),
	)
	if err := fxApp.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	startCtx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()
	if err := fxApp.Start(startCtx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	ui := tui.NewApp(tui.Options{
		Sessions: mgr,
		Bus:      b,
		Realtime: ch,
		Profile:  profile,
		Email:    *emailFlag,
		Logger:   logger,
	})
	runErr := ui.Run()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), startTimeout)
	defer stopCancel()
	if err := fxApp.Stop(stopCtx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", runErr)
		os.Exit(1)
	}
}
