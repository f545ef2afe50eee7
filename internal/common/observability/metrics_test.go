package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"jobboard-portal/internal/common/logger"
)

func TestObservability_RecordOperation(t *testing.T) {
	obs := New("portal-test", 1, logger.NewTestLogger(t))
	defer obs.Shutdown()

	assert.NotPanics(t, func() {
		obs.RecordOperation(context.Background(), "apply", "success", 12*time.Millisecond)
		obs.RecordOperation(context.Background(), "load", "error", time.Second)
	})
}

func TestObservability_NilReceiver(t *testing.T) {
	var obs *Observability
	assert.NotPanics(t, func() {
		obs.RecordOperation(context.Background(), "apply", "success", time.Millisecond)
		obs.Shutdown()
	})
}
