package events

import (
	"context"
	"strconv"
	"time"

	"github.com/IBM/sarama"
)

// KafkaPublisher writes events to one topic, keyed by order id so an order's
// events stay in one partition.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaPublisher connects a sync producer to brokers.
func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	prod, err := sarama.NewSyncProducer(brokers, ProducerConfig())
	if err != nil {
		return nil, err
	}
	return NewKafkaPublisherWithProducer(prod, topic), nil
}

// ProducerConfig is the sarama configuration used by NewKafkaPublisher.
func ProducerConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Timeout = 5 * time.Second
	return config
}

func NewKafkaPublisherWithProducer(p sarama.SyncProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: p, topic: topic}
}

// Publish sends the batch in one request. The context is not consulted by
// sarama; Producer.Timeout bounds the call.
func (p *KafkaPublisher) Publish(_ context.Context, batch []OrderEvent) error {
	msgs := make([]*sarama.ProducerMessage, 0, len(batch))
	for _, e := range batch {
		body, err := e.encode()
		if err != nil {
			return err
		}
		msgs = append(msgs, &sarama.ProducerMessage{
			Topic: p.topic,
			Key:   sarama.StringEncoder(strconv.FormatInt(e.OrderID, 10)),
			Value: sarama.ByteEncoder(body),
			Headers: []sarama.RecordHeader{
				{Key: []byte("type"), Value: []byte(e.Type)},
			},
			Timestamp: e.Occurred,
		})
	}
	return p.producer.SendMessages(msgs)
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
