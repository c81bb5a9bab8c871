package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"nbabot/internal/app"
	"nbabot/internal/config"
	"nbabot/internal/ledger"
	"nbabot/internal/logger"
	"nbabot/internal/metrics"
	"nbabot/internal/telegram"
	"nbabot/internal/translate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger.Init(cfg.Debug)

	led, err := ledger.Open(cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		log.Fatalf("cannot open ledger: %v", err)
	}
	defer led.Close()

	bot := app.New(cfg,
		led,
		telegram.New(cfg.TelegramToken, cfg.TelegramChatID),
		translate.New(cfg.TargetLang, cfg.RequestTimeout),
	)
	logger.Info("starting NBA Telegram bot", "setup", bot.Describe(), "tz", cfg.Timezone)

	if os.Getenv("ENABLE_HTTP_MONITORING") == "true" {
		go startMonitoringServer(led)
	}

	// First sweep before the scheduler takes over.
	bot.CheckFeeds()

	c := cron.New(cron.WithLocation(cfg.Location))
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", cfg.CheckEvery), bot.CheckFeeds); err != nil {
		log.Fatalf("cannot schedule feed polling: %v", err)
	}
	for _, spec := range cfg.CTACrons {
		if _, err := c.AddFunc(spec, bot.PostCTA); err != nil {
			logger.Error("cannot schedule CTA trigger", "cron", spec, "err", err)
		}
	}
	if _, err := c.AddFunc(cfg.ScheduleDailyCron, bot.PostDailySchedule); err != nil {
		logger.Error("cannot schedule daily schedule post", "cron", cfg.ScheduleDailyCron, "err", err)
	}
	c.Start()

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM)
	<-sc

	logger.Info("shutting down, waiting for in-flight jobs")
	<-c.Stop().Done()
}

func startMonitoringServer(led ledger.Ledger) {
	port := os.Getenv("MONITORING_PORT")
	if port == "" {
		port = "8080"
	}

	http.HandleFunc("/health", healthHandler)
	http.HandleFunc("/metrics", metricsHandler(led))

	logger.Info("monitoring server listening", "port", port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		logger.Error("monitoring server stopped", "err", err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	status := "ok"
	if !stats["is_healthy"].(bool) {
		status = "error"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	})
}

func metricsHandler(led ledger.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := metrics.Global.GetStats()
		if ledgerStats, err := led.Stats(); err == nil {
			for k, v := range ledgerStats {
				stats["ledger_"+k] = v
			}
		}
		if recent, err := led.Recent(10); err == nil {
			stats["recent_posts"] = recent
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(stats)
	}
}
