package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistered(t *testing.T) {
	t.Parallel()

	// Verify all metrics are non-nil (registered via promauto on package init).
	assert.NotNil(t, ChecksTotal)
	assert.NotNil(t, CheckFailuresTotal)
	assert.NotNil(t, CheckDuration)
	assert.NotNil(t, SlotsAvailable)
	assert.NotNil(t, NotificationsSentTotal)
	assert.NotNil(t, NotificationFailuresTotal)
}
