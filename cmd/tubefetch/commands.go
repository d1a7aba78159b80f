package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"tubefetch/internal/api"
	"tubefetch/internal/core/domain"
	"tubefetch/internal/logger"
	"tubefetch/internal/scheduler"
	"tubefetch/internal/service"
	"tubefetch/internal/textutil"
)

func (a *app) runProbe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("probe", flag.ExitOnError)
	url := fs.String("url", "", "video URL")
	verbose := fs.Bool("v", false, "debug logging")
	_ = fs.Parse(args)
	logger.SetVerbose(*verbose)

	sum, err := a.probe(ctx, *url)
	if err != nil {
		return err
	}

	fmt.Println("\n=== Probe Summary ===")
	fmt.Printf("Title:       %s\n", sum.Result.Metadata.Title)
	fmt.Printf("File name:   %s\n", sum.Title)
	fmt.Printf("Strategy:    %s\n", sum.Result.Strategy)
	fmt.Printf("Size:        %s\n", textutil.FormatSize(sum.Result.Metadata.Filesize))
	fmt.Printf("Resolutions: %s\n", strings.Join(sum.Resolutions, ", "))
	return nil
}

func (a *app) runDownload(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("download", flag.ExitOnError)
	url := fs.String("url", "", "video URL")
	kind := fs.String("type", string(domain.KindVideo), "video or audio")
	res := fs.String("res", service.BestResolution, "maximum video height")
	name := fs.String("name", "", "file name without extension (default: title)")
	dir := fs.String("dir", "", "destination directory (default: last used)")
	verbose := fs.Bool("v", false, "debug logging")
	_ = fs.Parse(args)
	logger.SetVerbose(*verbose)

	sum, err := a.probe(ctx, *url)
	if err != nil {
		return err
	}
	fmt.Printf("Found %q via %s\n", sum.Result.Metadata.Title, sum.Result.Strategy)

	result, err := a.orchestrator.Download(ctx, sum.Result, domain.DownloadRequest{
		URL:        *url,
		Dir:        *dir,
		FileName:   *name,
		Kind:       domain.MediaKind(*kind),
		Resolution: *res,
	}, func(p domain.Progress) {
		fmt.Printf("\r%-40s", p.Message)
	})
	fmt.Println()
	if err != nil {
		return err
	}

	fmt.Println("\n=== Download Summary ===")
	fmt.Printf("File:         %s\n", result.FilePath)
	fmt.Printf("Completed At: %s\n", result.CompletedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func (a *app) runHistory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	limit := fs.Int("n", 20, "entries to show")
	_ = fs.Parse(args)

	entries := a.orchestrator.History(ctx)
	if len(entries) == 0 {
		fmt.Println("No downloads yet.")
		return nil
	}
	for i, e := range entries {
		if i == *limit {
			break
		}
		fmt.Printf("%s  %-5s  %-9s  %s\n      %s\n", e.Date, e.Type, textutil.FormatSize(e.Size), e.Title, e.Path)
	}
	return nil
}

func (a *app) runUpdate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	_ = fs.Parse(args)

	if a.updater == nil {
		return errors.New("self-update is disabled, set UPDATE_BASE_URL")
	}
	res, err := a.updater.Check(ctx, func(p domain.Progress) {
		fmt.Printf("[%3.0f%%] %s\n", p.Percent, p.Message)
	})
	if err != nil {
		return err
	}

	switch {
	case res.Offline:
		fmt.Println("Update server unreachable, nothing changed.")
	case res.Updated:
		fmt.Printf("Updated to %s. Restart tubefetch to apply.\n", res.Version)
	default:
		fmt.Printf("Already up to date (%s).\n", res.Version)
	}
	return nil
}

func (a *app) runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", a.cfg.HTTPAddr, "listen address")
	_ = fs.Parse(args)
	log := logger.Log

	jobs := service.NewJobs(ctx, a.orchestrator, log.With().Str("component", "jobs").Logger())

	var updates api.UpdateChecker
	if a.updater != nil {
		updates = a.updater
		if res, err := a.updater.Check(ctx, nil); err != nil {
			log.Error().Err(err).Msg("startup update check failed")
		} else if res.Updated {
			log.Warn().Str("version", res.Version).Msg("update installed, restart to apply")
		}
	}

	sched, err := scheduler.New(scheduler.Config{
		Updater:        updates,
		UpdateInterval: a.cfg.UpdateInterval,
		Jobs:           jobs,
		JobRetention:   a.cfg.JobRetention,
	}, log.With().Str("component", "scheduler").Logger())
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	handler := api.NewHandler(jobs, a.orchestrator, updates, log.With().Str("component", "api").Logger())
	server := api.NewApp(handler, log)

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		if err := server.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("server shutdown error")
		}
	}()

	log.Info().Str("addr", *addr).Msg("tubefetch api started")
	if err := server.Listen(*addr); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	jobs.Wait()
	return nil
}

func (a *app) probe(ctx context.Context, url string) (*service.ProbeSummary, error) {
	if strings.TrimSpace(url) == "" {
		fmt.Fprint(os.Stderr, usage)
		return nil, errors.New("-url is required")
	}
	sum, err := a.orchestrator.Probe(ctx, url)
	var inv *service.InvalidInputError
	if errors.As(err, &inv) {
		return nil, fmt.Errorf("the link looks broken or incomplete, check the URL: %s", inv.Detail())
	}
	return sum, err
}
