package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"iv_housing/config"
	"iv_housing/fetch"
	"iv_housing/httputil"
	"iv_housing/logging"
	"iv_housing/models"
	"iv_housing/parser"
	"iv_housing/render"
	"iv_housing/scheduler"
	"iv_housing/search"
	"iv_housing/storage"
)

var (
	keyword  = flag.String("q", "", "Keyword, sent to the site and matched against title, address, beds and baths")
	maxPrice = flag.Int("max-price", 0, "Maximum monthly rent in dollars (0 = no limit)")
	beds     = flag.String("beds", "Any", "Bedrooms: Any, Studio, 1, 2, 3 or 4+")
	sublease = flag.Bool("sublease", false, "Only show subleases")
	format   = flag.String("format", "both", "Output: table, links or both")
	watch    = flag.Bool("watch", false, "Re-run the search on WATCH_CRON or WATCH_INTERVAL until interrupted")
	history  = flag.Int("history", 0, "Print the N most recent runs and exit")
	runLogs  = flag.String("run", "", "Print the log lines of one run id and exit")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logFile, err := logging.Setup(cfg.Log.Path, cfg.Log.MaxBytes)
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runLog, err := storage.Open(ctx, cfg.RunLogDSN)
	if err != nil {
		log.Fatalf("Failed to open run history: %v", err)
	}
	if runLog != nil {
		defer runLog.Close()
		log.Printf("Run history: %s", storage.MaskDSN(cfg.RunLogDSN))
	}

	if *history > 0 || *runLogs != "" {
		if err := showHistory(ctx, runLog); err != nil {
			log.Fatalf("History: %v", err)
		}
		return
	}

	criteria, err := criteriaFromFlags()
	if err != nil {
		log.Fatalf("Invalid filters: %v", err)
	}
	outFormat, err := render.ParseFormat(*format)
	if err != nil {
		log.Fatalf("Invalid -format: %v", err)
	}

	src, err := cfg.Source()
	if err != nil {
		log.Fatalf("Failed to select source: %v", err)
	}
	p, err := parser.New(src)
	if err != nil {
		log.Fatalf("Failed to compile selectors: %v", err)
	}

	clients := httputil.NewClients(&cfg.Fetch)
	fetcher := fetch.WithPolicy(
		fetch.NewHTTPFetcher(clients.Scraping, cfg.Fetch.UserAgent),
		cfg.Policy.CacheTTL,
		cfg.Policy.RateLimit,
	)

	svc := search.NewService(src, fetcher, p)
	svc.SetRunLog(runLog)
	log.Printf("Source: %s (%s)", src.Name, src.BaseURL)

	show := func(res search.Result) {
		if err := render.Result(os.Stdout, res, outFormat); err != nil {
			log.Printf("Render error: %v", err)
		}
	}

	if !*watch {
		show(svc.Run(ctx, criteria))
		return
	}

	sched := scheduler.New(cfg.Watch, svc, criteria, show)
	sched.TriggerNow(ctx)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start watch mode: %v", err)
	}
	log.Println("Watching. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	sched.Stop()
	cancel()
}

func criteriaFromFlags() (models.FilterCriteria, error) {
	sel, err := models.ParseBedSelector(*beds)
	if err != nil {
		return models.FilterCriteria{}, err
	}
	c := models.FilterCriteria{
		Keyword:      *keyword,
		MaxPrice:     *maxPrice,
		Beds:         sel,
		SubleaseOnly: *sublease,
	}
	return c, c.Validate()
}

func showHistory(ctx context.Context, runLog storage.RunLog) error {
	if runLog == nil {
		log.Println("Run history is disabled; set RUN_LOG_DSN to enable it")
		return nil
	}

	if *runLogs != "" {
		id, err := uuid.Parse(*runLogs)
		if err != nil {
			return fmt.Errorf("parse run id: %w", err)
		}
		logs, err := runLog.RunLogs(ctx, id)
		if err != nil {
			return fmt.Errorf("load run logs: %w", err)
		}
		return render.Logs(os.Stdout, logs)
	}

	runs, err := runLog.RecentRuns(ctx, *history)
	if err != nil {
		return fmt.Errorf("load runs: %w", err)
	}
	return render.History(os.Stdout, runs, time.Now())
}
