package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/alanbriolat/video-slides"
	"github.com/alanbriolat/video-slides/async"
	"github.com/alanbriolat/video-slides/internal/session"
	"github.com/alanbriolat/video-slides/internal/slides"
	"github.com/alanbriolat/video-slides/provider/youtube"
	_ "github.com/alanbriolat/video-slides/providers"
)

const spinnerInterval = 100 * time.Millisecond

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

	app := newApp(ctx, config.Level)

	result := async.Run(func() error { return app.Run(os.Args) })

	select {
	case err = <-result:
	case <-ctx.Done():
		stop()
		err = <-result
	}
	if err != nil {
		var exitErr cli.ExitCoder
		if !errors.As(err, &exitErr) {
			logger.Fatal(err.Error())
		}
	}
}

// newApp builds the command line interface. level is raised to debug by --debug.
func newApp(ctx context.Context, level zap.AtomicLevel) *cli.App {
	return &cli.App{
		Name:  "video-slides",
		Usage: "generate slides and a comment for a YouTube video",
		Flags: []cli.Flag{
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
			&cli.StringFlag{
				Name:    "history",
				Usage:   "record submissions in `FILE` (.db/.sqlite/.sqlite3 for SQLite, otherwise bbolt)",
				EnvVars: []string{"VIDEO_SLIDES_HISTORY"},
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				level.SetLevel(zapcore.DebugLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "extract",
				Usage:     "print the video identifier of each link",
				ArgsUsage: "LINK...",
				Action:    extractAction,
			},
			{
				Name:      "submit",
				Usage:     "generate slides and a comment for one link",
				ArgsUsage: "LINK",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.Exit("expected exactly one LINK", 2)
					}
					return submit(ctx, c, c.Args().First())
				},
			},
			{
				Name:  "form",
				Usage: "read links from stdin, one per line, showing every state change",
				Action: func(c *cli.Context) error {
					return form(ctx, c)
				},
			},
			{
				Name:  "history",
				Usage: "list recorded submissions",
				Action: func(c *cli.Context) error {
					return history(c)
				},
			},
			{
				Name:      "info",
				Usage:     "show title, author and duration of the video behind a link",
				ArgsUsage: "LINK",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.Exit("expected exactly one LINK", 2)
					}
					return info(ctx, c, c.Args().First())
				},
			},
		},
		HideHelpCommand: true,
	}
}

func extractAction(c *cli.Context) error {
	invalid := 0
	for _, link := range c.Args().Slice() {
		id, err := session.Extract(&video_slides.DefaultProviderRegistry, link)
		if err != nil {
			invalid++
			fmt.Fprintf(c.App.Writer, "%s\terror: %v\n", link, err)
		} else {
			fmt.Fprintf(c.App.Writer, "%s\t%s\n", link, id)
		}
	}
	if invalid > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

// newSession wires the backend client and history store from the global flags.
func newSession(ctx context.Context, c *cli.Context) (*session.Session, historyStore, error) {
	client, err := slides.New(slides.Config{
		BaseURL:    c.String("backend"),
		HTTPClient: &http.Client{Timeout: c.Duration("timeout")},
		UserAgent:  slides.DefaultConfig.UserAgent,
	})
	if err != nil {
		return nil, nil, err
	}
	store, err := openHistory(c.String("history"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open history: %w", err)
	}
	cfg := session.DefaultConfig
	cfg.Generator = client
	cfg.Database = store
	ses, err := session.New(cfg, ctx)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return ses, store, nil
}

// debugEvents logs every visible state change until the subscription closes.
func debugEvents(logger *zap.SugaredLogger, events <-chan session.Event) {
	for event := range events {
		switch e := event.(type) {
		case session.StateChanged:
			logger.Debugf("event: %T: %v", e, e.Submission())
			logChanges(logger, e.Old, e.New)
		case session.SubmissionDiscarded:
			logger.Debugf("event: %T: %v (%s)", e, e.Submission(), e.State.Status())
		}
	}
}

func submit(ctx context.Context, c *cli.Context, link string) error {
	logger := zap.S()
	ses, store, err := newSession(ctx, c)
	if err != nil {
		return err
	}
	defer store.Close()

	events, err := ses.Subscribe()
	if err != nil {
		ses.Close()
		return err
	}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		debugEvents(logger, events.Receive())
	}()
	defer func() {
		ses.Close()
		wg.Wait()
	}()

	sub := ses.Submit(link)
	if !sub.State().Status().IsTerminal() {
		spinUntil(fmt.Sprintf("generating slides for %s", sub.Identifier), sub.Done())
	}

	switch state := sub.Wait().(type) {
	case session.Succeeded:
		return renderResult(c.App.Writer, state)
	case session.Failed:
		logger.Debugf("submission failed: %v", state.Err)
		return cli.Exit(state.Message, 1)
	default:
		return fmt.Errorf("unexpected final state %T", state)
	}
}

func form(ctx context.Context, c *cli.Context) error {
	logger := zap.S()
	ses, store, err := newSession(ctx, c)
	if err != nil {
		return err
	}
	defer store.Close()
	defer ses.Close()

	events, err := ses.Subscribe()
	if err != nil {
		return err
	}
	var rendered sync.WaitGroup
	rendered.Add(1)
	go func() {
		defer rendered.Done()
		for event := range events.Receive() {
			e, ok := event.(session.StateChanged)
			if !ok {
				logger.Debugf("event: %T: %v", event, event.Submission())
				continue
			}
			logChanges(logger, e.Old, e.New)
			fmt.Fprintln(c.App.Writer, renderSnapshot(e.New))
			if succeeded, ok := e.State.(session.Succeeded); ok {
				if err := renderResult(c.App.Writer, succeeded); err != nil {
					logger.Errorf("failed to render result: %v", err)
				}
			}
		}
	}()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.App.Reader)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			logger.Errorf("failed to read input: %v", err)
		}
	}()

	var pending []*session.Submission
read:
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				break read
			}
			pending = append(pending, ses.Submit(line))
		case <-ctx.Done():
			logger.Info("Exiting gracefully...")
			break read
		}
	}

	// Let outstanding submissions finish unless interrupted
	for _, sub := range pending {
		select {
		case <-sub.Done():
		case <-ctx.Done():
		}
	}
	ses.Close()
	rendered.Wait()
	return nil
}

func history(c *cli.Context) error {
	path := c.String("history")
	if path == "" {
		return cli.Exit("no history file configured (use --history or VIDEO_SLIDES_HISTORY)", 2)
	}
	store, err := openHistory(path)
	if err != nil {
		return err
	}
	defer store.Close()
	records, err := store.ListSubmissions()
	if err != nil {
		return err
	}
	return renderHistory(c.App.Writer, records)
}

// spinUntil shows a spinner on stderr until c delivers a value, which it returns.
func spinUntil[T any](description string, c <-chan T) T {
	bar := progressbar.NewOptions64(-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	defer bar.Finish()
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()
	for {
		select {
		case v := <-c:
			return v
		case <-ticker.C:
			_ = bar.Add(1)
		}
	}
}

func info(ctx context.Context, c *cli.Context, link string) error {
	id, err := session.Extract(&video_slides.DefaultProviderRegistry, link)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	result := async.RunResult(func() (*youtube.Info, error) { return youtube.Recon(ctx, id) })
	details, err := spinUntil(fmt.Sprintf("fetching %s", youtube.CanonicalURL(id)), result).Parts()
	if err != nil {
		return err
	}
	return renderInfo(c.App.Writer, details)
}
