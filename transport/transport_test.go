package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransport_Struct(t *testing.T) {
	tr := Transport{
		Publisher:  &mockPublisher{},
		Subscriber: &mockSubscriber{},
	}

	assert.NotNil(t, tr.Publisher)
	assert.NotNil(t, tr.Subscriber)
}

func TestConfig_Interface(t *testing.T) {
	var _ Config = (*mockConfig)(nil)

	cfg := &mockConfig{broker: "test"}
	assert.Equal(t, "test", cfg.GetBroker())
}

type testProvider struct{}

func (testProvider) Capabilities() Capabilities {
	return Capabilities{Name: "test"}
}

func TestCapabilitiesProvider_Interface(t *testing.T) {
	var _ CapabilitiesProvider = testProvider{}

	caps := testProvider{}.Capabilities()
	assert.Equal(t, "test", caps.Name)
}
