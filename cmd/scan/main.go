package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/skinflip/internal/analysis/technical"
	"github.com/Alias1177/skinflip/internal/api/dmarket"
	"github.com/Alias1177/skinflip/internal/attributes"
	"github.com/Alias1177/skinflip/internal/config"
	"github.com/Alias1177/skinflip/internal/database"
	"github.com/Alias1177/skinflip/internal/strategy"
	"github.com/Alias1177/skinflip/models"
)

// scan runs every detector once over the watch list and prints what it
// found. It never places orders.
func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	titles := flag.String("titles", "", "semicolon separated titles, overrides the config watch list")
	asJSON := flag.Bool("json", false, "print the opportunity set as JSON")
	top := flag.Int("top", 10, "rows per strategy in table output")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	setupLogging(cfg.LogLevel)

	watch := cfg.Schedule.Titles
	if *titles != "" {
		watch = nil
		for _, t := range strings.Split(*titles, ";") {
			if t = strings.TrimSpace(t); t != "" {
				watch = append(watch, t)
			}
		}
	}
	if len(watch) == 0 {
		log.Fatal().Msg("No titles to scan; set schedule.titles, WATCH_TITLES or -titles")
	}

	market, err := dmarket.NewClient(dmarket.ClientOptions{
		PublicKey:       cfg.DMarket.PublicKey,
		SecretKey:       cfg.DMarket.SecretKey,
		BaseURL:         cfg.DMarket.BaseURL,
		GameID:          cfg.Strategy.GameID,
		RequestTimeout:  cfg.DMarket.RequestTimeout,
		RequestsPerSec:  cfg.DMarket.RequestsPerSec,
		MaxRetries:      cfg.DMarket.MaxRetries,
		MaxRetryTimeout: cfg.DMarket.MaxRetryTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create DMarket client")
	}

	var history models.PriceHistoryStore
	if cfg.DatabaseConfigured() {
		db, err := database.New(ctx, cfg.Database)
		if err != nil {
			log.Warn().Err(err).Msg("Price history unavailable, continuing without it")
		} else {
			defer db.Close()
			history = db
		}
	}

	engine := strategy.NewEngine(cfg.Strategy, market, history,
		attributes.NewEvaluator(), technical.NewAnalyzer(cfg.Volatility))
	set := engine.Run(ctx, watch)

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(set); err != nil {
			log.Fatal().Err(err).Msg("Failed to encode results")
		}
		return
	}
	printTable(set, *top)
}

func printTable(set models.OpportunitySet, top int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	for _, st := range models.AllStrategies {
		opps := set.ForStrategy(st)
		fmt.Fprintf(w, "\n== %s (%d)\n", st, len(opps))
		if len(opps) == 0 {
			continue
		}
		fmt.Fprintln(w, "TITLE\tBUY\tSELL\tFEE\tPROFIT\tPCT\tCONF\tASSET")
		for i, o := range opps {
			if top > 0 && i >= top {
				break
			}
			fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.1f%%\t%s\t%s\n",
				o.Title, o.BuyPriceUSD, o.SellPriceUSD, o.CommissionUSD, o.ProfitUSD, o.ProfitPct*100, o.Confidence, o.AssetRef())
		}
	}
}

func setupLogging(logLevel string) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(output)

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Logger.Level(level)
}
