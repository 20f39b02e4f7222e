package main

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/phishguard/phishguard/pkg/config"
	"github.com/phishguard/phishguard/pkg/lookup"
	"github.com/phishguard/phishguard/pkg/metrics"
	"github.com/phishguard/phishguard/pkg/urlinfo"
)

func runServer() error {
	cfg := config.NewDefaultConfig()
	cfg.MustValidate()

	eng, cleanup, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	verdictCache := buildCache(cfg)

	var ageChecker *lookup.AgeChecker
	if cfg.EnableAgeLookup {
		ageChecker = lookup.NewAgeChecker(nil)
		log.Println("[STARTUP] Registration-age lookup enabled")
	}

	app := fiber.New(fiber.Config{
		AppName: "PhishGuard",
	})

	app.Get("/health", func(c fiber.Ctx) error {
		status := "ok"
		if !eng.Ready() {
			status = "degraded"
		}
		return c.JSON(fiber.Map{"status": status, "version": Version})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Post("/scan", func(c fiber.Ctx) error {
		var req struct {
			URL string `json:"url"`
		}
		if err := c.Bind().Body(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
		}
		if req.URL == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "url field is required"})
		}

		if verdictCache != nil {
			if cached := verdictCache.Get(c.Context(), req.URL); cached != nil {
				metrics.CacheHits.Inc()
				return c.JSON(cached)
			}
		}

		start := time.Now()
		report, err := eng.Scan(c.Context(), req.URL)
		if err != nil {
			metrics.ScanErrors.Inc()
			if isValidationErr(err) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "scan failed"})
		}

		metrics.ScanDuration.Observe(time.Since(start).Seconds())
		metrics.ScansTotal.WithLabelValues(string(report.Classification)).Inc()
		for name, ms := range report.ModuleScores {
			metrics.ModuleScore.WithLabelValues(name).Observe(ms.Score)
		}
		if report.Degraded {
			metrics.DegradedScans.Inc()
		}

		if ageChecker != nil {
			risk := ageChecker.AgeRisk(c.Context(), urlinfo.Parse(req.URL).Host)
			report.RegistrationAgeRisk = &risk
		}

		if verdictCache != nil {
			verdictCache.Set(c.Context(), req.URL, report)
		}
		return c.JSON(report)
	})

	log.Printf("[STARTUP] PhishGuard %s listening on %s", Version, cfg.ListenAddr)
	return app.Listen(cfg.ListenAddr)
}

func isValidationErr(err error) bool {
	return errors.Is(err, urlinfo.ErrEmpty) ||
		errors.Is(err, urlinfo.ErrScheme) ||
		errors.Is(err, urlinfo.ErrWhitespace) ||
		errors.Is(err, urlinfo.ErrTooLong)
}
