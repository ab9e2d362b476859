package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/alanbriolat/video-slides"
	"github.com/alanbriolat/video-slides/async"
	"github.com/alanbriolat/video-slides/internal/filter"
	"github.com/alanbriolat/video-slides/internal/slides"
	_ "github.com/alanbriolat/video-slides/providers"
)

func main() {
	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.Level.SetLevel(zapcore.InfoLevel)
	logger, err := config.Build()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logger.Sync()
	zap.RedirectStdLog(logger)
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := &cli.App{
		Name:  "filter-server",
		Usage: "generate slides for YouTube links found in tweets",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "listen",
				Value:   ":5001",
				Usage:   "listen on `ADDR`",
				EnvVars: []string{"FILTER_LISTEN"},
			},
			&cli.StringFlag{
				Name:    "backend",
				Value:   slides.DefaultBaseURL,
				Usage:   "slides backend at `URL`",
				EnvVars: []string{"VIDEO_SLIDES_BACKEND"},
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Usage:   "give up on each backend request after `DURATION` (0 waits forever)",
				EnvVars: []string{"VIDEO_SLIDES_TIMEOUT"},
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Action: func(c *cli.Context) error {
			if c.Bool("debug") {
				config.Level.SetLevel(zapcore.DebugLevel)
			}
			client, err := slides.New(slides.Config{
				BaseURL:    c.String("backend"),
				HTTPClient: &http.Client{Timeout: c.Duration("timeout")},
				UserAgent:  slides.DefaultConfig.UserAgent,
			})
			if err != nil {
				return err
			}
			server := filter.NewServer(client, &video_slides.DefaultProviderRegistry)
			return server.ListenAndServe(ctx, c.String("listen"))
		},
		HideHelpCommand: true,
	}

	result := async.Run(func() error { return app.Run(os.Args) })

	select {
	case err = <-result:
	case <-ctx.Done():
		stop()
		logger.Info("Exiting gracefully...")
		err = <-result
	}
	if err != nil {
		logger.Fatal(err.Error())
	}
}
