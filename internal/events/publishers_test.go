package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"droneFoodDelivery/internal/logger"
	"droneFoodDelivery/models"
)

type fakeChannel struct {
	declared  []string
	published []amqp.Publishing
	keys      []string
	failOn    int64
	closed    bool
}

func (c *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	c.declared = append(c.declared, name+"/"+kind)
	return nil
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	var e OrderEvent
	if err := json.Unmarshal(msg.Body, &e); err != nil {
		return err
	}
	if e.OrderID == c.failOn {
		return errors.New("channel closed")
	}
	c.keys = append(c.keys, key)
	c.published = append(c.published, msg)
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

func sampleEvent(id int64, typ Type) OrderEvent {
	return OrderEvent{
		Type:        typ,
		OrderID:     id,
		CustomerID:  7,
		Status:      models.OrderStatusPaid,
		TotalAmount: 19.25,
		Occurred:    time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRabbitMQPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{failOn: -1}
	p, err := newRabbitMQPublisher(nil, ch, "order_events")
	require.NoError(t, err)
	assert.Equal(t, []string{"order_events/topic"}, ch.declared)

	err = p.Publish(context.Background(), []OrderEvent{sampleEvent(1, TypeOrderPaid), sampleEvent(2, TypeOrderDelivered)})
	require.NoError(t, err)
	require.Len(t, ch.published, 2)
	assert.Equal(t, []string{"order.paid", "order.delivered"}, ch.keys)
	assert.Equal(t, amqp.Persistent, ch.published[0].DeliveryMode)
	assert.Equal(t, "application/json", ch.published[0].ContentType)

	var decoded OrderEvent
	require.NoError(t, json.Unmarshal(ch.published[0].Body, &decoded))
	assert.Equal(t, int64(1), decoded.OrderID)
	assert.Equal(t, models.OrderStatusPaid, decoded.Status)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestRabbitMQPublisher_ReportsFailedMessages(t *testing.T) {
	ch := &fakeChannel{failOn: 2}
	p, err := newRabbitMQPublisher(nil, ch, "x")
	require.NoError(t, err)

	err = p.Publish(context.Background(), []OrderEvent{sampleEvent(1, TypeOrderPaid), sampleEvent(2, TypeOrderPaid), sampleEvent(3, TypeOrderPaid)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "order 2")
	assert.Len(t, ch.published, 2)
}

func TestKafkaPublisher_Publish(t *testing.T) {
	prod := mocks.NewSyncProducer(t, ProducerConfig())
	prod.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "42" {
			return errors.New("unexpected key " + string(key))
		}
		if msg.Topic != "order-events" {
			return errors.New("unexpected topic " + msg.Topic)
		}
		return nil
	})
	prod.ExpectSendMessageAndSucceed()

	p := NewKafkaPublisherWithProducer(prod, "order-events")
	err := p.Publish(context.Background(), []OrderEvent{sampleEvent(42, TypeOrderPlaced), sampleEvent(43, TypeOrderPaid)})
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestKafkaPublisher_Failure(t *testing.T) {
	prod := mocks.NewSyncProducer(t, ProducerConfig())
	prod.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewKafkaPublisherWithProducer(prod, "order-events")
	err := p.Publish(context.Background(), []OrderEvent{sampleEvent(1, TypeOrderPlaced)})
	require.Error(t, err)
	require.NoError(t, p.Close())
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := &LogPublisher{Logger: logger.New(logger.Config{Output: &buf})}
	require.NoError(t, p.Publish(context.Background(), []OrderEvent{sampleEvent(5, TypeDroneAssigned)}))
	assert.Contains(t, buf.String(), "order.drone_assigned")
}
