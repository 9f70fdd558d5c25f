package rabbitmq_producer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublisherConfig_Validate(t *testing.T) {
	assert.NoError(t, PublisherConfig{ExchangeName: "x"}.validate())
	assert.NoError(t, PublisherConfig{ExchangeName: "x", ExchangeType: "topic", DeclareExchangeIfMissing: true}.validate())
	assert.Error(t, PublisherConfig{ExchangeType: "topic", DeclareExchangeIfMissing: true}.validate())
	assert.Error(t, PublisherConfig{ExchangeName: "x", DeclareExchangeIfMissing: true}.validate())
}

func TestNewPublisher_RequiresManager(t *testing.T) {
	_, err := NewPublisher(PublisherConfig{ExchangeName: "x"}, nil)
	assert.Error(t, err)
}
