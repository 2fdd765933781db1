package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// MqttLogWriter implementuje rozhraní io.Writer.
// Vše, co se do něj zapíše, se odešle do MQTT (typicky logs/sensor-simulator),
// kde si to vyzvedne log-collector.
type MqttLogWriter struct {
	pub   Publisher
	topic string
}

// NewMqttLogWriter vytvoří novou instanci writeru.
func NewMqttLogWriter(pub Publisher, topic string) *MqttLogWriter {
	return &MqttLogWriter{pub: pub, topic: topic}
}

// Write je metoda vyžadovaná rozhraním io.Writer. slog ji volá pro každý záznam.
// Nečekáme na potvrzení (fire-and-forget), logování nesmí brzdit simulaci.
func (w *MqttLogWriter) Write(p []byte) (n int, err error) {
	// Payload musíme zkopírovat, protože 'p' se může změnit.
	payload := make([]byte, len(p))
	copy(payload, p)

	_ = w.pub.Publish(w.topic, payload)
	return len(p), nil
}

// parseLevel převede LOG_LEVEL na slog.Level. Neznámá hodnota = info.
func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// setupLogger sestaví JSON logger. Stdout patří terminálovému UI, proto logujeme
// do souboru a do MQTT. Vrací i funkci pro úklid (zavření souboru, odpojení klienta).
func setupLogger(cfg Config, dial Dialer, runID string) (*slog.Logger, func()) {
	var writers []io.Writer
	var cleanup []func()
	var warnings []string

	if cfg.LogFile != "" {
		// O_APPEND + O_CREATE stejně jako log-collector.
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("nelze otevřít log soubor %s: %v", cfg.LogFile, err))
		} else {
			writers = append(writers, f)
			cleanup = append(cleanup, func() { f.Close() })
		}
	}

	if cfg.LogTopic != "" && dial != nil {
		pub, err := dial(fmt.Sprintf("sensor-simulator-log-%s", runID))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("logování do MQTT vypnuto: %v", err))
		} else {
			writers = append(writers, NewMqttLogWriter(pub, cfg.LogTopic))
			cleanup = append(cleanup, pub.Disconnect)
		}
	}

	out := io.Discard
	if len(writers) > 0 {
		out = io.MultiWriter(writers...)
	}

	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)})).
		With("service", "sensor-simulator", "run_id", runID)
	for _, w := range warnings {
		logger.Warn(w)
	}

	return logger, func() {
		// Odpojení klienta před zavřením souboru - poslední záznamy ještě odejdou.
		for i := len(cleanup) - 1; i >= 0; i-- {
			cleanup[i]()
		}
	}
}
