package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, 10*time.Second, cfg.EscalationTimeout)
	assert.Equal(t, Weights{
		MultipleFaces:    20,
		NoFaces:          10,
		NonFrontalPose:   5,
		SuspiciousObject: 15,
		SuspiciousGaze:   5,
	}, cfg.Weights)
	assert.False(t, cfg.JournalEnabled())
	assert.False(t, cfg.MQTTEnabled())
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTimeout)
	assert.Equal(t, time.Minute, cfg.SessionSweepInterval)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("WEIGHT_MULTIPLE_FACES", "30")
	t.Setenv("ESCALATION_TIMEOUT", "3s")
	t.Setenv("DETECTOR_TIMEOUT", "not-a-duration")
	t.Setenv("POSE_CONCURRENCY", "0")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", "/tmp/journal.db")

	cfg := LoadConfig()

	assert.Equal(t, 30, cfg.Weights.MultipleFaces)
	assert.Equal(t, 3*time.Second, cfg.EscalationTimeout)
	assert.Equal(t, 5*time.Second, cfg.DetectorTimeout)
	assert.Equal(t, 1, cfg.PoseConcurrency)
	assert.True(t, cfg.JournalEnabled())
	assert.Equal(t, "/tmp/journal.db", cfg.DSN())
}

func TestDSNForLog_MasksPassword(t *testing.T) {
	cfg := &Config{
		DBDriver:   "pgx",
		DBHost:     "db",
		DBPort:     "5432",
		DBUser:     "proctor",
		DBPassword: "secret",
		DBName:     "exam_proctor",
		DBSSLMode:  "disable",
	}

	assert.Contains(t, cfg.DSN(), "password=secret")
	assert.NotContains(t, cfg.DSNForLog(), "secret")
}
