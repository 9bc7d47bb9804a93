package scheduler

import (
	"testing"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCronSpec(t *testing.T) {
	cases := map[string]string{
		"hourly":     "@every 1h",
		"twicedaily": "@every 12h",
		"daily":      "@every 24h",
		"weekly":     "@every 168h",
		"unknown":    "@every 24h",
	}
	for interval, want := range cases {
		assert.Equal(t, want, cronSpec(interval, 30), interval)
	}
	assert.Equal(t, "@every 45m", cronSpec("custom", 45))
}

func TestCronSpecsParse(t *testing.T) {
	for _, interval := range []string{"hourly", "twicedaily", "daily", "weekly", "custom"} {
		spec := cronSpec(interval, 30)
		_, err := cron.ParseStandard(spec)
		require.NoError(t, err, spec)
	}
}
