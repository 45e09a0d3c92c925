package rabbitmq_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"catalog/pkg/rabbitmq"
)

type MockChannel struct {
	mock.Mock
}

func (m *MockChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	a := m.Called(name, durable, autoDelete, exclusive, noWait, args)
	return amqp.Queue{Name: name}, a.Error(0)
}

func (m *MockChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	a := m.Called(exchange, key, mandatory, immediate, msg)
	return a.Error(0)
}

func (m *MockChannel) Close() error {
	return m.Called().Error(0)
}

func TestNewClientWithChannel_DeclaresDurableQueue(t *testing.T) {
	ch := new(MockChannel)
	ch.On("QueueDeclare", rabbitmq.DefaultQueue, true, false, false, false, amqp.Table(nil)).Return(nil).Once()

	_, err := rabbitmq.NewClientWithChannel(ch, "")
	require.NoError(t, err)
	ch.AssertExpectations(t)
}

func TestNewClientWithChannel_DeclareFailure(t *testing.T) {
	ch := new(MockChannel)
	ch.On("QueueDeclare", "custom", true, false, false, false, amqp.Table(nil)).Return(errors.New("access refused")).Once()

	_, err := rabbitmq.NewClientWithChannel(ch, "custom")
	assert.ErrorContains(t, err, "access refused")
}

func TestPublishJSON(t *testing.T) {
	ch := new(MockChannel)
	ch.On("QueueDeclare", mock.Anything, true, false, false, false, amqp.Table(nil)).Return(nil)
	ch.On("Publish", "", "events", false, false, mock.MatchedBy(func(msg amqp.Publishing) bool {
		var body map[string]any
		if err := json.Unmarshal(msg.Body, &body); err != nil {
			return false
		}
		return msg.ContentType == "application/json" &&
			msg.DeliveryMode == amqp.Persistent &&
			msg.MessageId == "evt-1" &&
			body["type"] == "product.created"
	})).Return(nil).Once()
	ch.On("Close").Return(nil).Once()

	client, err := rabbitmq.NewClientWithChannel(ch, "events")
	require.NoError(t, err)
	require.NoError(t, client.PublishJSON("evt-1", map[string]string{"type": "product.created"}))
	require.NoError(t, client.Close())
	ch.AssertExpectations(t)
}

func TestPublishJSON_BrokerError(t *testing.T) {
	ch := new(MockChannel)
	ch.On("QueueDeclare", mock.Anything, true, false, false, false, amqp.Table(nil)).Return(nil)
	ch.On("Publish", mock.Anything, mock.Anything, false, false, mock.Anything).Return(errors.New("channel closed"))

	client, err := rabbitmq.NewClientWithChannel(ch, "")
	require.NoError(t, err)
	assert.ErrorContains(t, client.PublishJSON("evt-2", struct{}{}), "channel closed")
}
