package mq

import (
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
)

func TestHeaderCarrier(t *testing.T) {
	c := &HeaderCarrier{}

	assert.Equal(t, "", c.Get("traceparent"))

	c.Set("traceparent", "00-abc-def-01")
	assert.Equal(t, "00-abc-def-01", c.Get("traceparent"))
	assert.Equal(t, []string{"traceparent"}, c.Keys())
}

func TestHeaderCarrierNonStringValue(t *testing.T) {
	c := &HeaderCarrier{Headers: amqp.Table{"x-delay": int64(5000)}}

	// 非字符串头不参与传播
	assert.Equal(t, "", c.Get("x-delay"))

	c.Set("traceparent", "00-abc-def-01")
	assert.Equal(t, int64(5000), c.Headers["x-delay"])
	assert.Equal(t, "00-abc-def-01", c.Get("traceparent"))
}
