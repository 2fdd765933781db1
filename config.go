package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config drží konfiguraci simulátoru.
// Stejně jako ostatní služby ji čteme jednou při startu z ENV proměnných (12-Factor App)
// a za běhu se už nemění.
type Config struct {
	// MQTT Konfigurace
	MQTTHost     string
	MQTTPort     int
	MQTTUsername string
	MQTTPassword string
	Topic        string // Jeden společný topic pro všechny senzory, rozlišují se podle "id" v payloadu
	ClientPrefix string // Client ID senzoru = prefix + id (např. sensor_42)

	ConnectTimeout time.Duration

	// Parametry simulace
	GridSize      int // Mřížka je GridSize x GridSize, počet senzorů = GridSize²
	InitialMean   float64
	InitialNoise  float64
	SineAmplitude float64
	SinePeriod    time.Duration

	// Intervaly jednotlivých smyček
	UpdateInterval  time.Duration
	DisplayInterval time.Duration
	InputInterval   time.Duration

	// App Konfigurace
	LogLevel string
	LogFile  string
	LogTopic string

	// Volitelné služby - prázdná hodnota = vypnuto
	HTTPPort    string
	PostgresURL string
	ValkeyAddr  string
}

// LoadConfig načte nastavení. Pokud proměnná chybí nebo nejde naparsovat, použije default.
func LoadConfig() Config {
	return Config{
		MQTTHost:       getEnv("MQTT_HOST", "localhost"),
		MQTTPort:       getEnvInt("MQTT_PORT", 1883),
		MQTTUsername:   getEnv("MQTT_USERNAME", "energy"),
		MQTTPassword:   getEnv("MQTT_PASSWORD", ""),
		Topic:          getEnv("MQTT_TOPIC", "data"),
		ClientPrefix:   getEnv("MQTT_CLIENT_PREFIX", "sensor_"),
		ConnectTimeout: getEnvDuration("MQTT_CONNECT_TIMEOUT", 5*time.Second),

		GridSize:      getEnvInt("GRID_SIZE", 10),
		InitialMean:   getEnvFloat("INITIAL_MEAN", 50.0),
		InitialNoise:  getEnvFloat("INITIAL_NOISE", 1.0),
		SineAmplitude: getEnvFloat("SINE_AMPLITUDE", 5.0),
		SinePeriod:    getEnvDuration("SINE_PERIOD", 300*time.Second), // 5 minut

		UpdateInterval:  getEnvDuration("UPDATE_INTERVAL", time.Second),
		DisplayInterval: getEnvDuration("DISPLAY_INTERVAL", time.Second),
		InputInterval:   getEnvDuration("INPUT_INTERVAL", 50*time.Millisecond),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", "sensor-simulator.log"),
		LogTopic: getEnv("LOG_TOPIC", "logs/sensor-simulator"),

		HTTPPort:    getEnv("HTTP_PORT", ""),
		PostgresURL: getEnv("POSTGRES_URL", ""),
		ValkeyAddr:  getEnv("VALKEY_ADDR", ""),
	}
}

// SensorCount je počet simulovaných senzorů.
func (c Config) SensorCount() int {
	return c.GridSize * c.GridSize
}

// BrokerURL vrací adresu ve formátu, který očekává paho (tcp://host:port).
func (c Config) BrokerURL() string {
	return fmt.Sprintf("tcp://%s:%d", c.MQTTHost, c.MQTTPort)
}

// Validate odmítne hodnoty, se kterými simulace nemůže běžet.
// Ostatní nesmysly (např. záporný mean) jsou legitimní testovací scénáře.
func (c Config) Validate() error {
	var errs []error
	if c.GridSize < 1 {
		errs = append(errs, fmt.Errorf("GRID_SIZE musí být alespoň 1, je %d", c.GridSize))
	}
	if c.SinePeriod <= 0 {
		errs = append(errs, fmt.Errorf("SINE_PERIOD musí být kladná, je %s", c.SinePeriod))
	}
	if c.InitialNoise < 0 {
		errs = append(errs, fmt.Errorf("INITIAL_NOISE nesmí být záporný, je %g", c.InitialNoise))
	}
	for name, d := range map[string]time.Duration{
		"UPDATE_INTERVAL":  c.UpdateInterval,
		"DISPLAY_INTERVAL": c.DisplayInterval,
		"INPUT_INTERVAL":   c.InputInterval,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s musí být kladný, je %s", name, d))
		}
	}
	if c.Topic == "" {
		errs = append(errs, errors.New("MQTT_TOPIC nesmí být prázdný"))
	}
	return errors.Join(errs...)
}

// getEnv je pomocná funkce pro DRY (Don't Repeat Yourself).
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return fallback
	}
	return v
}

// getEnvDuration čte Go duration ("1s", "50ms"). Holé číslo bereme jako sekundy,
// aby šlo psát SINE_PERIOD=300 stejně jako v původním skriptu.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return fallback
}
