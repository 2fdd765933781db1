package main

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMqttLogWriterCopiesPayload(t *testing.T) {
	pub := &fakePublisher{}
	w := NewMqttLogWriter(pub, "logs/sensor-simulator")

	buf := []byte(`{"msg":"hello"}`)
	n, err := w.Write(buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)

	buf[2] = 'X'
	msgs := pub.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "logs/sensor-simulator", msgs[0].Topic)
	assert.Equal(t, `{"msg":"hello"}`, string(msgs[0].Payload))
}

func TestMqttLogWriterSwallowsPublishErrors(t *testing.T) {
	w := NewMqttLogWriter(&fakePublisher{publishErr: errors.New("offline")}, "logs/x")
	n, err := w.Write([]byte("abc"))
	assert.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("WARN"))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}

func TestSetupLoggerWritesFileAndMQTT(t *testing.T) {
	cfg := LoadConfig()
	cfg.LogFile = filepath.Join(t.TempDir(), "sim.log")
	cfg.LogTopic = "logs/sim"
	broker := newFakeBroker()

	logger, cleanup := setupLogger(cfg, broker.Dial, "run-1")
	logger.Info("Simulace běží")
	cleanup()

	data, err := os.ReadFile(cfg.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Simulace běží")
	assert.Contains(t, string(data), `"run_id":"run-1"`)

	pub := broker.publisher("sensor-simulator-log-run-1")
	require.NotNil(t, pub)
	require.Len(t, pub.messages(), 1)
	assert.Equal(t, "logs/sim", pub.messages()[0].Topic)
	assert.Equal(t, int32(1), pub.disconnects.Load())
}

func TestSetupLoggerWithoutBroker(t *testing.T) {
	cfg := LoadConfig()
	cfg.LogFile = filepath.Join(t.TempDir(), "sim.log")
	broker := newFakeBroker("sensor-simulator-log-run-2")

	logger, cleanup := setupLogger(cfg, broker.Dial, "run-2")
	logger.Info("jen do souboru")
	cleanup()

	data, err := os.ReadFile(cfg.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "logování do MQTT vypnuto")
	assert.Contains(t, string(data), "jen do souboru")
}
