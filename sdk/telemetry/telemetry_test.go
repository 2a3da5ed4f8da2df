package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTraceID(t *testing.T) {
	tel := NewTelemetry()

	assert.Equal(t, NoTrace, tel.GetTraceID(context.Background()))

	ctx := tel.SetTraceID(context.Background())
	id := TraceID(ctx)
	assert.NotEqual(t, NoTrace, id)
	assert.Len(t, id, 18)
	assert.GreaterOrEqual(t, Since(ctx).Nanoseconds(), int64(0))
}
