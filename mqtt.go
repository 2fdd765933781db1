package main

import (
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Publisher je jedno spojení senzoru na broker.
// Zbytek simulátoru neví nic o MQTT - v testech ho nahrazuje fake.
type Publisher interface {
	Publish(topic string, payload []byte) error
	Disconnect()
}

// Dialer otevře nové spojení pro dané client ID.
type Dialer func(clientID string) (Publisher, error)

// disconnectQuiesce: kolik ms nechat paho dokončit rozpracovanou práci při odpojení.
const disconnectQuiesce = 250

// newClientOptions sestaví společné nastavení pro všechny klienty simulátoru.
func newClientOptions(cfg Config, clientID string) *mqtt.ClientOptions {
	return mqtt.NewClientOptions().
		AddBroker(cfg.BrokerURL()).
		SetClientID(clientID).
		SetUsername(cfg.MQTTUsername).
		SetPassword(cfg.MQTTPassword).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetAutoReconnect(true).
		SetMaxReconnectInterval(30 * time.Second)
}

// connectClient vytvoří klienta a blokuje, dokud se nepřipojí nebo nevyprší timeout.
func connectClient(opts *mqtt.ClientOptions, timeout time.Duration) (mqtt.Client, error) {
	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(timeout) {
		// Klient pořád běží (a s AutoReconnect by se mohl připojit později bez vlastníka), musíme ho zrušit.
		client.Disconnect(0)
		return nil, fmt.Errorf("connect timeout po %s", timeout)
	}
	if err := token.Error(); err != nil {
		return nil, err
	}
	return client, nil
}

// NewMQTTDialer vrací Dialer, který pro každý senzor otevře vlastní paho klienta.
func NewMQTTDialer(cfg Config) Dialer {
	return func(clientID string) (Publisher, error) {
		client, err := connectClient(newClientOptions(cfg, clientID), cfg.ConnectTimeout)
		if err != nil {
			return nil, fmt.Errorf("připojení %s k %s selhalo: %w", clientID, cfg.BrokerURL(), err)
		}
		return &mqttPublisher{client: client}, nil
	}
}

type mqttPublisher struct {
	client mqtt.Client
}

// Publish odešle zprávu s QoS 0 bez čekání na token (fire-and-forget).
// Pokud paho token rovnou ukončí chybou (typicky ErrNotConnected), vrátíme ji.
func (p *mqttPublisher) Publish(topic string, payload []byte) error {
	token := p.client.Publish(topic, 0, false, payload)
	select {
	case <-token.Done():
		return token.Error()
	default:
		return nil
	}
}

func (p *mqttPublisher) Disconnect() {
	p.client.Disconnect(disconnectQuiesce)
}
