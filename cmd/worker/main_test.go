package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"attendance-tracker/internal/config"
)

func TestCheckBackends(t *testing.T) {
	tests := []struct {
		name    string
		queue   string
		cache   string
		wantErr string
	}{
		{"redis everywhere", "redis", "redis", ""},
		{"memory queue", "memory", "redis", "queue backend"},
		{"memory cache", "redis", "memory", "cache backend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Defaults()
			cfg.Queue.Backend = tt.queue
			cfg.Cache.Backend = tt.cache

			err := checkBackends(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
