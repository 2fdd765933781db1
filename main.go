package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	// 1. Načtení Konfigurace
	cfg := LoadConfig()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Neplatná konfigurace: %v\n", err)
		os.Exit(1)
	}

	// 2. Logger (soubor + MQTT). Terminál patří UI, na stdout logovat nemůžeme.
	runID := uuid.NewString()
	dial := NewMQTTDialer(cfg)
	logger, closeLog := setupLogger(cfg, dial, runID)
	defer closeLog()
	slog.SetDefault(logger)

	logger.Info("Startuji Sensor Simulator", "broker", cfg.BrokerURL(), "sensors", cfg.SensorCount(), "topic", cfg.Topic)

	// 3. Terminál. Bez obrazovky nemá smysl pokračovat - jediná fatální chyba za běhu.
	term, err := NewTerminal()
	if err != nil {
		logger.Error("Kritická chyba: Nelze převzít terminál", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	// Close obnoví terminál i při panice v main goroutině.
	defer term.Close()

	_ = term.Draw(Frame{Spans: []Span{{Text: fmt.Sprintf("Připojuji %d senzorů k %s ...", cfg.SensorCount(), cfg.BrokerURL())}}})

	// 4. Graceful Shutdown - SIGINT/SIGTERM zruší kontext stejně jako klávesa Q.
	ctx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	// 5. Sdílený stav a senzory
	state := NewSimState(cfg.GridSize, cfg.InitialMean, cfg.InitialNoise)
	registry := NewRegistry(cfg.SensorCount(), cfg.GridSize, cfg.ClientPrefix, dial, nil, logger)
	sim := NewSimulator(registry, logger)

	// 6. Volitelný katalog senzorů v Postgresu
	if cfg.PostgresURL != "" {
		catalog, closeCatalog := openCatalog(ctx, cfg.PostgresURL, logger)
		if catalog != nil {
			defer closeCatalog()
			if err := catalog.Register(ctx, registry.Sensors(), cfg.Topic); err != nil {
				logger.Warn("Katalog senzorů se nepodařilo zapsat", "error", err)
			}
			defer func() {
				offCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := catalog.MarkOffline(offCtx, registry.Sensors()); err != nil {
					logger.Warn("Katalog senzorů nešlo označit jako offline", "error", err)
				}
			}()
		}
	}

	// 7. Volitelné zrcadlo stavu ve Valkey
	if cfg.ValkeyAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.ValkeyAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("Valkey není dostupný, zrcadlení vypnuto", "addr", cfg.ValkeyAddr, "error", err)
			rdb.Close()
		} else {
			defer rdb.Close()
			sim.Add(NewStateMirror(rdb, state, registry.Sensors(), cfg.DisplayInterval, logger).Run)
		}
	}

	// 8. Healthcheck server (pro Docker/K8s)
	if cfg.HTTPPort != "" {
		sim.Add(healthServer(cfg.HTTPPort, sim, logger))
	}

	// 9. Tři hlavní smyčky
	model := NewReadingModel(cfg.SineAmplitude, cfg.SinePeriod, nil)
	publish := NewPublishLoop(state, registry, model, cfg.Topic, cfg.UpdateInterval, time.Now(), logger)
	display := NewDisplayLoop(state, term, cfg.SineAmplitude, cfg.DisplayInterval, statusInfo(cfg, registry, logger), logger)
	input := NewInputLoop(state, term, cfg.InputInterval, sim.Stop, logger)
	sim.Add(publish.Run, display.Run, input.Run)

	if err := sim.Run(ctx); err != nil {
		logger.Error("Simulace skončila s chybou", "error", err)
	}
	logger.Info("Simulace ukončena")
	// Zde proběhnou defery (obnovení terminálu, zavření DB, odpojení logovacího klienta)
}

// openCatalog připojí pgxpool a ověří spojení (Ping). Při chybě vrací nil - katalog není kritický.
func openCatalog(ctx context.Context, url string, logger *slog.Logger) (*SensorCatalog, func()) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		logger.Warn("Chyba konfigurace DB, katalog vypnut", "error", err)
		return nil, nil
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Warn("DB není dostupná, katalog vypnut", "error", err)
		pool.Close()
		return nil, nil
	}
	return NewSensorCatalog(pool, logger), pool.Close
}

// statusInfo vrací zdroj dat pro informační řádek displeje.
func statusInfo(cfg Config, registry *Registry, logger *slog.Logger) func() StatusInfo {
	monitor, err := NewProcessMonitor(logger)
	if err != nil {
		logger.Warn("Monitor procesu nedostupný", "error", err)
	}
	online, total := registry.Online(), len(registry.Sensors())

	return func() StatusInfo {
		info := StatusInfo{Broker: cfg.BrokerURL(), Online: online, Total: total}
		if monitor != nil {
			stats := monitor.Sample()
			info.CPU, info.RSSMB = stats.CPU, stats.RSSMB
		}
		return info
	}
}

// healthHandler odpovídá 200 OK, dokud simulace běží, a 503 od chvíle, kdy někdo zavolal Stop.
func healthHandler(sim *Simulator) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if !sim.Running() {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("STOPPING"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	return mux
}

// healthServer spustí jednoduchý HTTP endpoint a zastaví ho spolu se simulací.
func healthServer(port string, sim *Simulator, logger *slog.Logger) Runner {
	return func(ctx context.Context) error {
		server := &http.Server{Addr: ":" + port, Handler: healthHandler(sim)}
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			server.Shutdown(shutdownCtx)
		}()

		logger.Info("Health server běží", "port", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			// Spadlý healthcheck simulaci neukončí.
			logger.Error("Health server spadl", "error", err)
		}
		return nil
	}
}
