package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"tubefetch/internal/adapters/cookies"
	"tubefetch/internal/adapters/downloader"
	"tubefetch/internal/adapters/localstorage"
	"tubefetch/internal/adapters/repo"
	"tubefetch/internal/adapters/ytdlp"
	"tubefetch/internal/config"
	"tubefetch/internal/logger"
	"tubefetch/internal/platform"
	"tubefetch/internal/service"
)

const usage = `Usage: tubefetch <command> [flags]

Commands:
  probe     -url <url>                       find a working strategy and list resolutions
  download  -url <url> [-type video|audio] [-res 720] [-name n] [-dir d]
  history                                    list finished downloads
  update                                     check for and install updates
  serve     [-addr 127.0.0.1:8090]           run the HTTP API

Example:
  tubefetch download -url https://www.youtube.com/watch?v=dQw4w9WgXcQ -type audio
`

// app holds the wired services shared by every command.
type app struct {
	cfg          *config.Config
	store        *localstorage.LocalStorage
	orchestrator *service.Orchestrator
	updater      *service.Updater // nil when UPDATE_BASE_URL is unset
}

func main() {
	// A missing .env is fine, variables may come from the environment.
	_ = godotenv.Load()
	logger.Init(logger.IsDev())
	log := logger.Log

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	cmd, args := os.Args[1], os.Args[2:]

	cfg := config.Load()
	a, err := setup(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch cmd {
	case "probe":
		err = a.runProbe(ctx, args)
	case "download":
		err = a.runDownload(ctx, args)
	case "history":
		err = a.runHistory(ctx, args)
	case "update":
		err = a.runUpdate(ctx, args)
	case "serve":
		err = a.runServe(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Error().Err(err).Str("command", cmd).Msg("command failed")
		os.Exit(1)
	}
}

func setup(cfg *config.Config) (*app, error) {
	log := logger.Log

	if err := cfg.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}
	if added, err := platform.EnsureOnPath(cfg.BinDir); err != nil {
		log.Warn().Err(err).Msg("could not add bin directory to PATH")
	} else if added {
		log.Debug().Str("dir", cfg.BinDir).Msg("bin directory added to PATH")
	}

	if wrote, err := cookies.Materialize(cfg.CookiesTxt, cfg.CookiesJSON, time.Now()); err != nil {
		log.Warn().Err(err).Msg("could not convert cookies.json")
	} else if wrote {
		log.Info().Str("path", cfg.CookiesTxt).Msg("cookies.txt created from cookies.json")
	}

	strategies, err := service.LoadStrategies(cfg.StrategiesFile())
	if err != nil {
		log.Warn().Err(err).Msg("ignoring strategies file, using built-in list")
		strategies = service.DefaultStrategies()
	}

	ffmpegDir := ""
	if filepath.Dir(platform.BinaryPath(cfg.BinDir, "ffmpeg")) != "." {
		ffmpegDir = cfg.BinDir
	}
	extractor := ytdlp.NewExtractor(cfg.YtDlpPath, ffmpegDir, cfg.ProbeTimeout)
	store := localstorage.NewLocalStorage(cfg.DataDir)

	prober := service.NewProber(extractor, strategies, cfg.CookiesTxt, log.With().Str("component", "prober").Logger())
	a := &app{
		cfg:          cfg,
		store:        store,
		orchestrator: service.NewOrchestrator(prober, extractor, store, cfg.DownloadDir, log),
	}

	if cfg.UpdateBaseURL != "" {
		source := repo.NewClient(cfg.UpdateBaseURL, downloader.NewHTTPDownloader(30*time.Second))
		a.updater = service.NewUpdater(source, store, cfg.AppDir, log.With().Str("component", "updater").Logger())
	}
	return a, nil
}
