package emitter

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"EXAM_PROCTOR/go-backend/internal/config"
	"EXAM_PROCTOR/go-backend/internal/models"
	"EXAM_PROCTOR/go-backend/internal/session"
)

type fakeToken struct {
	err      error
	timedOut bool
}

func (t *fakeToken) Wait() bool { return !t.timedOut }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return !t.timedOut }
func (t *fakeToken) Error() error { return t.err }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type published struct {
	topic   string
	qos     byte
	payload []byte
}

type fakeClient struct {
	open  bool
	token *fakeToken
	sent  []published
}

func (c *fakeClient) Publish(topic string, qos byte, _ bool, payload interface{}) mqtt.Token {
	c.sent = append(c.sent, published{topic: topic, qos: qos, payload: payload.([]byte)})
	if c.token == nil {
		return &fakeToken{}
	}
	return c.token
}

func (c *fakeClient) IsConnectionOpen() bool { return c.open }

func newEmitter(format string, c client) *MQTTEmitter {
	e := NewMQTTEmitter(&config.Config{
		MQTTBroker:      "localhost:1883",
		MQTTClientID:    "test",
		MQTTTopicPrefix: "proctor/alerts/",
		MQTTQoS:         1,
		MQTTPayload:     format,
	})
	e.client = c
	return e
}

var (
	key  = session.NewKey("student-1", "quiz-9")
	note = models.ObserverNotification{
		Type:           "alert",
		Message:        []string{"Multiple faces detected"},
		ScoreIncrement: 20,
		AutoSubmitted:  false,
		NewScore:       40,
	}
)

func TestTopic(t *testing.T) {
	e := newEmitter("json", nil)
	assert.Equal(t, "proctor/alerts/quiz-9/student-1", e.Topic(key))
}

func TestPublish_JSON(t *testing.T) {
	c := &fakeClient{open: true}
	e := newEmitter("json", c)

	require.NoError(t, e.Publish(key, note))
	require.Len(t, c.sent, 1)
	assert.Equal(t, "proctor/alerts/quiz-9/student-1", c.sent[0].topic)
	assert.Equal(t, byte(1), c.sent[0].qos)

	var msg AlertMessage
	require.NoError(t, json.Unmarshal(c.sent[0].payload, &msg))
	assert.Equal(t, "student-1", msg.SubjectID)
	assert.Equal(t, []string{"Multiple faces detected"}, msg.Alerts)
	assert.Equal(t, 40, msg.NewScore)
	assert.NotZero(t, msg.Timestamp)

	assert.Equal(t, uint64(1), e.Stats().Published)
}

func TestPublish_Msgpack(t *testing.T) {
	c := &fakeClient{open: true}
	e := newEmitter("MSGPACK", c)

	require.NoError(t, e.Publish(key, note))

	var msg AlertMessage
	require.NoError(t, msgpack.Unmarshal(c.sent[0].payload, &msg))
	assert.Equal(t, "quiz-9", msg.ExamID)
	assert.Equal(t, 20, msg.ScoreIncrement)
}

func TestPublish_Failures(t *testing.T) {
	tests := []struct {
		name   string
		client client
	}{
		{"never connected", nil},
		{"connection down", &fakeClient{open: false}},
		{"timeout", &fakeClient{open: true, token: &fakeToken{timedOut: true}}},
		{"broker error", &fakeClient{open: true, token: &fakeToken{err: errors.New("not authorized")}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEmitter("json", tt.client)

			assert.Error(t, e.Publish(key, note))
			stats := e.Stats()
			assert.Equal(t, uint64(1), stats.Errors)
			assert.Zero(t, stats.Published)
		})
	}
}

func TestBrokerURL(t *testing.T) {
	e := newEmitter("json", nil)
	assert.Equal(t, "tcp://localhost:1883", e.brokerURL())

	e.broker = "ssl://mqtt.example.com:8883"
	assert.Equal(t, "ssl://mqtt.example.com:8883", e.brokerURL())
}
