package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHookChainOrderAndThreading(t *testing.T) {
	var calls []string
	mk := func(name string) ConsumerHook {
		return HookFuncs{
			Before: func(ctx context.Context, _ string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
				calls = append(calls, "before:"+name)
				return ctx, km, append(data, name...), nil
			},
			After: func(context.Context, string, kafka.Message, []byte, error) {
				calls = append(calls, "after:"+name)
			},
		}
	}
	chain := NewHookChain(mk("a"), nil, mk("b"))

	ctx, km, data, err := chain.BeforeHandle(context.Background(), "t", kafka.Message{}, []byte(">"))
	require.NoError(t, err)
	chain.AfterHandle(ctx, "t", km, data, nil)

	assert.Equal(t, ">ab", string(data))
	assert.Equal(t, []string{"before:a", "before:b", "after:b", "after:a"}, calls)
}

func TestHookChainRecoversPanics(t *testing.T) {
	var errs int
	chain := NewHookChain(
		HookFuncs{Before: func(context.Context, string, kafka.Message, []byte) (context.Context, kafka.Message, []byte, error) {
			panic("boom")
		}},
		HookFuncs{Err: func(context.Context, string, kafka.Message, []byte, error) { errs++ }},
	)

	_, _, data, err := chain.BeforeHandle(context.Background(), "t", kafka.Message{}, []byte("x"))
	var he *HookError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, "ERR_PANIC", he.Code)
	assert.Equal(t, "x", string(data))
	assert.Equal(t, 1, errs)
}

func TestTraceHook(t *testing.T) {
	h := TraceHook()
	km := kafka.Message{Headers: []kafka.Header{{Key: HeaderTraceID, Value: []byte("req-1")}}}
	ctx, _, _, err := h.BeforeHandle(context.Background(), "t", km, nil)
	require.NoError(t, err)
	assert.Equal(t, "req-1", TraceIDFromContext(ctx))

	ctx, _, _, _ = h.BeforeHandle(context.Background(), "t", kafka.Message{}, nil)
	assert.Len(t, TraceIDFromContext(ctx), 36)
}

func TestBuildMessagesCarriesTraceID(t *testing.T) {
	ctx := WithTraceID(context.Background(), "req-9")
	msgs, total, err := buildMessages(ctx, "equity.reports", []Message{
		{Key: []byte("RY.TO"), Value: map[string]int{"a": 1}},
		{Key: []byte("TD.TO"), Value: "raw"},
	}, time.Unix(0, 0))
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, int64(len(`{"a":1}`)+3), total)
	assert.Equal(t, "req-9", ExtractTraceID(msgs[0]))
	assert.Equal(t, "equity.reports", msgs[1].Topic)
	assert.Equal(t, "raw", string(msgs[1].Value))
}

func TestBackoffWithJitterBounds(t *testing.T) {
	min, max := 100*time.Millisecond, time.Second
	for attempt := 1; attempt <= 40; attempt++ {
		d := backoffWithJitter(min, max, attempt)
		assert.GreaterOrEqual(t, d, min/2)
		assert.LessOrEqual(t, d, max)
	}
}

func TestConfigOptions(t *testing.T) {
	cfg := Config{Brokers: []string{"k1:9092"}, Topics: Topics{DLQ: "dlq"}}
	cfg.Consumer.WorkerCount = 8

	cc := &ConsumerConfig{}
	for _, o := range cfg.ConsumerOptions() {
		o(cc)
	}
	assert.Equal(t, []string{"k1:9092"}, cc.Brokers)
	assert.Equal(t, 8, cc.WorkerCount)
	assert.Equal(t, "dlq", cc.DLQTopic)

	_, err := NewProducer()
	assert.Error(t, err)
	_, err = NewConsumer()
	assert.True(t, err != nil && !errors.Is(err, ErrNonRetryable))
}
