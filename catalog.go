package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
)

// execer je podmnožina *pgxpool.Pool, kterou katalog používá. V testech ji nahrazuje fake.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const catalogSchema = `
	CREATE TABLE IF NOT EXISTS simulated_sensors (
		id           INTEGER PRIMARY KEY,
		client_id    TEXT NOT NULL,
		mqtt_topic   TEXT NOT NULL,
		grid_row     INTEGER NOT NULL,
		grid_col     INTEGER NOT NULL,
		phase_offset DOUBLE PRECISION NOT NULL,
		online       BOOLEAN NOT NULL,
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

const catalogUpsert = `
	INSERT INTO simulated_sensors (id, client_id, mqtt_topic, grid_row, grid_col, phase_offset, online, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, now())
	ON CONFLICT (id) DO UPDATE SET
		client_id    = EXCLUDED.client_id,
		mqtt_topic   = EXCLUDED.mqtt_topic,
		grid_row     = EXCLUDED.grid_row,
		grid_col     = EXCLUDED.grid_col,
		phase_offset = EXCLUDED.phase_offset,
		online       = EXCLUDED.online,
		updated_at   = now()
`

const catalogMarkOffline = `UPDATE simulated_sensors SET online = false, updated_at = now() WHERE id = ANY($1)`

// SensorCatalog zapisuje metadata senzorů do Postgresu, aby navazující služby
// (ingestor, dashboard) uměly přeložit "id" z payloadu na pozici v mřížce.
// Ukládáme jen metadata, žádná měření.
type SensorCatalog struct {
	db     execer
	logger *slog.Logger
}

// NewSensorCatalog - konstruktor (Dependency Injection).
func NewSensorCatalog(db execer, logger *slog.Logger) *SensorCatalog {
	return &SensorCatalog{db: db, logger: logger}
}

// Register vytvoří tabulku (pokud chybí) a upsertne všechny senzory.
// Chyba jednoho řádku nezastaví ostatní, vrátí se souhrnně.
func (c *SensorCatalog) Register(ctx context.Context, sensors []*Sensor, topic string) error {
	if _, err := c.db.Exec(ctx, catalogSchema); err != nil {
		return fmt.Errorf("vytvoření tabulky simulated_sensors selhalo: %w", err)
	}

	var errs []error
	for _, s := range sensors {
		_, err := c.db.Exec(ctx, catalogUpsert, s.ID, s.ClientID, topic, s.Row, s.Col, s.Phase, s.Online())
		if err != nil {
			errs = append(errs, fmt.Errorf("senzor %d: %w", s.ID, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("registrace %d z %d senzorů selhala: %w", len(errs), len(sensors), errors.Join(errs...))
	}

	c.logger.Info("Katalog senzorů aktualizován", "sensors", len(sensors))
	return nil
}

// MarkOffline označí senzory jako odpojené (volá se při ukončení).
func (c *SensorCatalog) MarkOffline(ctx context.Context, sensors []*Sensor) error {
	ids := make([]int, 0, len(sensors))
	for _, s := range sensors {
		ids = append(ids, s.ID)
	}
	if _, err := c.db.Exec(ctx, catalogMarkOffline, ids); err != nil {
		return fmt.Errorf("označení senzorů jako offline selhalo: %w", err)
	}
	return nil
}
