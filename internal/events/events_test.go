package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/office-duty-card/internal/config"
)

// MockPublisher is a mock implementation of Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, subject string, payload []byte) error {
	args := m.Called(ctx, subject, payload)
	return args.Error(0)
}

func (m *MockPublisher) Close() {}

func TestEmit(t *testing.T) {
	p := new(MockPublisher)
	var got []byte
	p.On("Publish", mock.Anything, CardCreated, mock.Anything).
		Run(func(args mock.Arguments) { got = args.Get(2).([]byte) }).
		Return(nil)

	Emit(context.Background(), p, CardCreated, "abc", "ops@example.com")
	p.AssertExpectations(t)

	var ev Event
	require.NoError(t, json.Unmarshal(got, &ev))
	assert.Equal(t, CardCreated, ev.Type)
	assert.Equal(t, "abc", ev.CardID)
	assert.Equal(t, "ops@example.com", ev.Actor)
	assert.False(t, ev.At.IsZero())
}

func TestEmit_FailureIsSwallowed(t *testing.T) {
	p := new(MockPublisher)
	p.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down"))

	assert.NotPanics(t, func() {
		Emit(context.Background(), p, CardDeleted, "abc", "")
	})
	Emit(context.Background(), nil, CardDeleted, "abc", "")
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "card/created", Topic(CardCreated))
	assert.Equal(t, "auth/signed_out", Topic(SignedOut))
}

func TestNew(t *testing.T) {
	p, err := New(config.Config{EventsBackend: "none"})
	require.NoError(t, err)
	assert.IsType(t, Noop{}, p)
	assert.NoError(t, p.Publish(context.Background(), CardCreated, nil))
	p.Close()

	_, err = New(config.Config{EventsBackend: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestNew_UnreachableBrokers(t *testing.T) {
	_, err := New(config.Config{EventsBackend: "nats", NATSURL: "nats://127.0.0.1:1"})
	assert.Error(t, err)

	if testing.Short() {
		t.Skip("skipping MQTT connect timeout in short mode")
	}
	_, err = New(config.Config{EventsBackend: "mqtt", MQTTBroker: "tcp://127.0.0.1:1", MQTTClientID: "test"})
	assert.Error(t, err)
}
