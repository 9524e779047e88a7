// Package emitter publishes accepted alert notifications to an MQTT broker
// so dashboards and other consumers can follow every session.
package emitter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/vmihailenco/msgpack/v5"

	"EXAM_PROCTOR/go-backend/internal/config"
	"EXAM_PROCTOR/go-backend/internal/logging"
	"EXAM_PROCTOR/go-backend/internal/models"
	"EXAM_PROCTOR/go-backend/internal/session"
)

const (
	PayloadJSON    = "json"
	PayloadMsgpack = "msgpack"

	connectTimeout = 5 * time.Second
	publishTimeout = 2 * time.Second
)

// AlertMessage is the published payload.
type AlertMessage struct {
	SubjectID      string   `json:"subject_id" msgpack:"subject_id"`
	ExamID         string   `json:"exam_id" msgpack:"exam_id"`
	Type           string   `json:"type" msgpack:"type"`
	Alerts         []string `json:"message" msgpack:"message"`
	ScoreIncrement int      `json:"score_increment" msgpack:"score_increment"`
	AutoSubmitted  bool     `json:"auto_submitted" msgpack:"auto_submitted"`
	NewScore       int      `json:"new_score" msgpack:"new_score"`
	Timestamp      int64    `json:"timestamp" msgpack:"timestamp"`
}

// client is the part of mqtt.Client the emitter uses.
type client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	IsConnectionOpen() bool
}

// MQTTEmitter publishes alert notifications to {prefix}/{exam_id}/{subject_id}.
type MQTTEmitter struct {
	broker   string
	clientID string
	prefix   string
	qos      byte
	format   string

	mu        sync.RWMutex
	client    client
	published uint64
	errors    uint64

	log *slog.Logger
}

func NewMQTTEmitter(cfg *config.Config) *MQTTEmitter {
	format := strings.ToLower(cfg.MQTTPayload)
	if format != PayloadMsgpack {
		format = PayloadJSON
	}
	return &MQTTEmitter{
		broker:   cfg.MQTTBroker,
		clientID: cfg.MQTTClientID,
		prefix:   strings.TrimRight(cfg.MQTTTopicPrefix, "/"),
		qos:      byte(cfg.MQTTQoS),
		format:   format,
		log:      logging.With("component", "emitter"),
	}
}

// Connect establishes the broker connection with automatic reconnects.
func (e *MQTTEmitter) Connect(ctx context.Context) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(e.brokerURL())
	opts.SetClientID(e.clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)

	opts.OnConnect = func(mqtt.Client) {
		e.log.Info("mqtt connection established", "broker", e.broker, "client_id", e.clientID)
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		e.log.Warn("mqtt connection lost, will auto-reconnect", "broker", e.broker, "error", err)
	}

	c := mqtt.NewClient(opts)
	e.log.Info("connecting to mqtt broker", "broker", e.broker)

	token := c.Connect()
	select {
	case <-token.Done():
	case <-time.After(connectTimeout):
		return fmt.Errorf("mqtt connection timeout")
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connection failed: %w", err)
	}

	e.mu.Lock()
	e.client = c
	e.mu.Unlock()
	return nil
}

func (e *MQTTEmitter) brokerURL() string {
	if strings.Contains(e.broker, "://") {
		return e.broker
	}
	return "tcp://" + e.broker
}

// Publish sends one accepted alert notification.
func (e *MQTTEmitter) Publish(key session.Key, n models.ObserverNotification) error {
	e.mu.RLock()
	c := e.client
	e.mu.RUnlock()

	if c == nil || !c.IsConnectionOpen() {
		e.countError()
		return fmt.Errorf("mqtt not connected")
	}

	payload, err := e.encode(AlertMessage{
		SubjectID:      key.SubjectID,
		ExamID:         key.ExamID,
		Type:           n.Type,
		Alerts:         n.Message,
		ScoreIncrement: n.ScoreIncrement,
		AutoSubmitted:  n.AutoSubmitted,
		NewScore:       n.NewScore,
		Timestamp:      time.Now().Unix(),
	})
	if err != nil {
		e.countError()
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	topic := e.Topic(key)
	token := c.Publish(topic, e.qos, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		e.countError()
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		e.countError()
		return fmt.Errorf("publish failed: %w", err)
	}

	e.mu.Lock()
	e.published++
	e.mu.Unlock()

	e.log.Debug("alert published", "topic", topic, "qos", e.qos, "size", len(payload))
	return nil
}

func (e *MQTTEmitter) Topic(key session.Key) string {
	return fmt.Sprintf("%s/%s/%s", e.prefix, key.ExamID, key.SubjectID)
}

func (e *MQTTEmitter) encode(msg AlertMessage) ([]byte, error) {
	if e.format == PayloadMsgpack {
		return msgpack.Marshal(msg)
	}
	return json.Marshal(msg)
}

func (e *MQTTEmitter) countError() {
	e.mu.Lock()
	e.errors++
	e.mu.Unlock()
}

func (e *MQTTEmitter) Disconnect() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if c, ok := e.client.(mqtt.Client); ok && c.IsConnected() {
		c.Disconnect(250)
		e.log.Info("mqtt disconnected")
	}
	e.client = nil
}

type Stats struct {
	Connected bool   `json:"connected"`
	Published uint64 `json:"published"`
	Errors    uint64 `json:"errors"`
}

func (e *MQTTEmitter) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return Stats{
		Connected: e.client != nil && e.client.IsConnectionOpen(),
		Published: e.published,
		Errors:    e.errors,
	}
}
