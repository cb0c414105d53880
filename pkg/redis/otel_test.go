package redis

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestTracingHook_RecordsSpan(t *testing.T) {
	ctx := context.Background()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	mp := sdkmetric.NewMeterProvider()

	hook, err := newTracingHook(tp.Tracer("test"), mp.Meter("test"), "hoursguard", 0)
	require.NoError(t, err)

	process := hook.ProcessHook(func(ctx context.Context, cmd redis.Cmder) error {
		return redis.Nil
	})

	cmd := redis.NewStringCmd(ctx, "get", "hg:local:records")
	err = process(ctx, cmd)
	assert.ErrorIs(t, err, redis.Nil)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "redis.get", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)

	var keys []string
	for _, attr := range spans[0].Attributes() {
		if attr.Key == "redis.keys" {
			keys = attr.Value.AsStringSlice()
		}
	}
	assert.Equal(t, []string{"hg:local:records"}, keys)
}

func TestExtractKeys_SkipsValues(t *testing.T) {
	assert.Equal(t, []string{"hg:records"}, extractKeys([]interface{}{"set", "hg:records", "secret-payload"}))
	assert.Nil(t, extractKeys([]interface{}{"ping"}))
}
