package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nerufuyo/nerucordarchiver"
	"github.com/nerufuyo/nerucordarchiver/async"
	"github.com/nerufuyo/nerucordarchiver/internal/console"
	"github.com/nerufuyo/nerucordarchiver/internal/history"
	"github.com/nerufuyo/nerucordarchiver/internal/youtube"
)

// archiver carries the shared state every command works against.
type archiver struct {
	ctx      context.Context
	logger   *zap.Logger
	logLevel zap.AtomicLevel
	cfg      nerucordarchiver.Config
	cfgPath  string
	service  *youtube.Service
	store    *history.Store
}

func main() {
	logConfig := zap.NewDevelopmentConfig()
	logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logConfig.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	logger, err := logConfig.Build()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logger.Sync()
	zap.RedirectStdLog(logger)
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = nerucordarchiver.WithLogger(ctx, logger)

	arch := &archiver{
		ctx:      ctx,
		logger:   logger,
		logLevel: logConfig.Level,
		service:  youtube.New(),
	}
	app := arch.newApp()

	result := async.Run(func() error { return app.Run(os.Args) })

	select {
	case err = <-result:
	case <-ctx.Done():
		stop()
		err = <-result
	}
	if err != nil {
		console.Error("%v", err)
		_ = logger.Sync()
		os.Exit(1)
	}
}

func (a *archiver) newApp() *cli.App {
	return &cli.App{
		Name:  "nerucordarchiver",
		Usage: "archive videos, audio, playlists, and channels from YouTube",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "enable debug logging",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "load configuration from `FILE`",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				a.logLevel.SetLevel(zapcore.DebugLevel)
			}

			a.cfgPath = c.String("config")
			if a.cfgPath == "" {
				a.cfgPath = nerucordarchiver.DefaultConfigPath()
			}
			cfg, err := nerucordarchiver.LoadConfig(a.cfgPath)
			if err != nil {
				return err
			}
			a.cfg = cfg

			store, err := history.Open(history.DefaultPath())
			if err != nil {
				zap.S().Named("history").Warnf("download history disabled: %v", err)
				store = nil
			}
			a.store = store
			return nil
		},
		After: func(c *cli.Context) error {
			return a.store.Close()
		},
		Commands: []*cli.Command{
			a.cmdVideo(),
			a.cmdAudio(),
			a.cmdPlaylist(),
			a.cmdChannel(),
			a.cmdBrowse(),
			a.cmdInfo(),
			a.cmdBatch(),
			a.cmdConfig(),
			a.cmdHistory(),
			a.cmdInteractive(),
		},
		HideHelpCommand: true,
	}
}
