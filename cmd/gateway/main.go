// PhishGuard gateway: multi-signal URL risk scoring over a fixed-schema
// feature contract. Serves HTTP scoring, one-shot CLI scans, and
// Prometheus metrics.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/phishguard/phishguard/pkg/audit"
	"github.com/phishguard/phishguard/pkg/cache"
	"github.com/phishguard/phishguard/pkg/classifier"
	"github.com/phishguard/phishguard/pkg/config"
	"github.com/phishguard/phishguard/pkg/engine"
	"github.com/phishguard/phishguard/pkg/heuristics"
	"github.com/phishguard/phishguard/pkg/lookup"
	"github.com/phishguard/phishguard/pkg/trust"
)

const Version = "1.0.0"

func main() {
	root := &cobra.Command{
		Use:   "phishguard",
		Short: "Multi-signal phishing URL risk scoring",
		Long: `PhishGuard scores URLs for phishing risk using a trained classifier
over a fixed feature schema, alongside four independent heuristic
modules (lexical, reputation, behavior, language) surfaced for
analytics.`,
		SilenceUsage: true,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP scoring server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}

	scanCmd := &cobra.Command{
		Use:   "scan <url>",
		Short: "Score a single URL and print the report as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(args[0])
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("phishguard " + Version)
		},
	}

	root.AddCommand(serveCmd, scanCmd, versionCmd)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildEngine assembles the scoring engine from runtime configuration.
// The returned cleanup releases audit backends.
func buildEngine(cfg *config.Config) (*engine.Engine, func(), error) {
	trustCfg := trust.Default()
	if cfg.TrustConfig != "" {
		loaded, err := trust.LoadFile(cfg.TrustConfig)
		if err != nil {
			return nil, nil, fmt.Errorf("trust config: %w", err)
		}
		trustCfg = loaded
		log.Printf("[STARTUP] Trust lists loaded from %s", cfg.TrustConfig)
	}

	clf := loadClassifier(cfg)

	var prober heuristics.HostProber
	if cfg.EnableDNSProbe {
		prober = lookup.NewProber(cfg.DNSProbeTimeout)
	}

	sink, cleanup, err := buildAuditSink(cfg)
	if err != nil {
		return nil, nil, err
	}

	eng, err := engine.New(engine.Config{
		Trust:      trustCfg,
		Classifier: clf,
		Analyzers:  heuristics.Defaults(trustCfg, prober),
		Weights:    engine.Weights(cfg.EnsembleWeights),
		Thresholds: engine.Thresholds{
			Phishing:   cfg.PhishingThreshold,
			Suspicious: cfg.SuspiciousThreshold,
		},
		Audit: sink,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return eng, cleanup, nil
}

func loadClassifier(cfg *config.Config) *classifier.Classifier {
	if cfg.ModelPath == "" {
		log.Println("[STARTUP] Using embedded classifier model")
		return classifier.LoadDefault()
	}
	clf, err := classifier.Load(cfg.ModelPath)
	if err != nil {
		if cfg.RequireModel {
			log.Fatalf("[STARTUP] FATAL: model artifact %s: %v", cfg.ModelPath, err)
		}
		log.Printf("[WARN] Model artifact %s unusable (%v), scoring degraded at neutral probability", cfg.ModelPath, err)
		return classifier.NewDegraded()
	}
	log.Printf("[STARTUP] Classifier loaded from %s (schema v%d)", cfg.ModelPath, clf.Version())
	return clf
}

func buildAuditSink(cfg *config.Config) (engine.AuditSink, func(), error) {
	switch cfg.AuditBackend {
	case config.AuditNone:
		return audit.Nop(), func() {}, nil
	case config.AuditPostgres:
		sink, err := audit.NewPGSink(context.Background(), cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("audit backend: %w", err)
		}
		log.Println("[STARTUP] Audit trail: postgres")
		return sink, sink.Close, nil
	default:
		logger, err := audit.NewFileLogger(cfg.AuditLogPath)
		if err != nil {
			return nil, nil, fmt.Errorf("audit log %s: %w", cfg.AuditLogPath, err)
		}
		log.Printf("[STARTUP] Audit trail: %s", cfg.AuditLogPath)
		return logger, func() {}, nil
	}
}

func buildCache(cfg *config.Config) *cache.VerdictCache {
	if !cfg.EnableCache {
		return nil
	}
	vc := cache.New(cfg.RedisAddr, config.GetEnv("PHISHGUARD_REDIS_PASSWORD", ""), cfg.RedisDB, cfg.CacheTTL)
	if err := vc.Ping(context.Background()); err != nil {
		log.Printf("[WARN] Redis at %s unreachable (%v), verdict cache disabled", cfg.RedisAddr, err)
		return nil
	}
	log.Printf("[STARTUP] Verdict cache: redis at %s", cfg.RedisAddr)
	return vc
}

func runScan(url string) error {
	cfg := config.NewDefaultConfig()
	cfg.AuditBackend = config.AuditNone
	if err := cfg.Validate(); err != nil {
		return err
	}

	eng, cleanup, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := eng.Scan(context.Background(), url)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
