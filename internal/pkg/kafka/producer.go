package kafka

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type Producer interface {
	Publish(ctx context.Context, message interface{}) error
	Close() error
}

type kafkaProducer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer connects to the first broker to create the topic. When Kafka is
// unreachable a logging producer is returned so conversions keep working.
func NewProducer(brokers, topic string) Producer {
	addrs := strings.Split(brokers, ",")
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(addrs...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}

	logrus.Infof("Kafka producer configured for brokers: %s", brokers)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := kafka.DialContext(ctx, "tcp", addrs[0])
	if err != nil {
		logrus.Warnf("Kafka connection failed: %v", err)
		logrus.Warn("Using logging producer instead")
		writer.Close()
		return NewLogProducer(topic)
	}
	defer conn.Close()

	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil {
		logrus.Infof("Could not create topic (might already exist): %v", err)
	} else {
		logrus.Infof("Created topic: %s", topic)
	}

	logrus.Infof("Connected to Kafka at %s", brokers)
	return &kafkaProducer{writer: writer, topic: topic}
}

func (p *kafkaProducer) Publish(ctx context.Context, message interface{}) error {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte("image-converter"),
		Value: messageBytes,
		Time:  time.Now(),
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		logrus.Errorf("Failed to write message to Kafka: %v", err)
		return err
	}

	logrus.Debugf("Message successfully sent to topic: %s", p.topic)
	return nil
}

func (p *kafkaProducer) Close() error {
	return p.writer.Close()
}

// logProducer only logs events, used without a broker
type logProducer struct {
	topic string
}

func NewLogProducer(topic string) Producer {
	return &logProducer{topic: topic}
}

func (m *logProducer) Publish(_ context.Context, message interface{}) error {
	logrus.WithField("topic", m.topic).Debugf("Event: %+v", message)
	return nil
}

func (m *logProducer) Close() error {
	return nil
}
