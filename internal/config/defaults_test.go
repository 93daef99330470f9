package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults_EmptyConfig(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultAnalysisBurst, cfg.Server.AnalysisBurst)
	assert.Equal(t, DefaultBackendPrefix, cfg.Backend.PathPrefix)
	assert.Equal(t, DefaultCenterLat, cfg.Render.CenterLat)
	assert.Equal(t, DefaultCenterLng, cfg.Render.CenterLng)
	assert.Equal(t, DefaultZoom, cfg.Render.Zoom)
	assert.Equal(t, "#000000", cfg.Render.RawColor)
	assert.Equal(t, DefaultMinIOBucket, cfg.MinIO.Bucket)
	assert.Equal(t, []string{DefaultKafkaBroker}, cfg.Kafka.Brokers)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultWorkerHealthPort, cfg.Worker.HealthPort)
	assert.Equal(t, DefaultWorkerHandlerTimeout, cfg.Worker.HandlerTimeout)
	assert.Equal(t, DefaultFormat, cfg.Worker.SnapshotFormat)
}

func TestApplyDefaults_PreserveExistingValues(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 9999
	cfg.Render.CenterLat = 1
	cfg.Backend.RetryMax = 0
	ApplyDefaults(cfg)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 1.0, cfg.Render.CenterLat)
	assert.Equal(t, 0.0, cfg.Render.CenterLng)
	assert.Equal(t, 0, cfg.Backend.RetryMax)
}

func TestApplyDefaults_Nil(t *testing.T) {
	assert.NotPanics(t, func() { ApplyDefaults(nil) })
}

//Personal.AI order the ending
