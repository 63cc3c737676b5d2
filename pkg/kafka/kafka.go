package kafka

import (
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/Astemirdum/library-checkout/pkg/circuit_breaker"
)

const CheckoutTopic = "library.checkouts"

type Config struct {
	Addrs []string `envconfig:"KAFKA_ADDRS"`
	Topic string   `envconfig:"KAFKA_CHECKOUT_TOPIC" default:"library.checkouts"`
}

func NewProducer(cfg Config) (sarama.SyncProducer, error) {
	defaultCfg := sarama.NewConfig()

	defaultCfg.Producer.RequiredAcks = sarama.WaitForAll
	defaultCfg.Producer.Return.Successes = true
	defaultCfg.Producer.Timeout = 5 * time.Second

	return sarama.NewSyncProducer(cfg.Addrs, defaultCfg)
}

type EventType string

const (
	EventCheckoutCreated  EventType = "CHECKOUT_CREATED"
	EventCheckoutReturned EventType = "CHECKOUT_RETURNED"
)

type CheckoutEvent struct {
	Type       EventType `json:"type"`
	CheckoutID uuid.UUID `json:"checkoutId"`
	BookID     uuid.UUID `json:"bookId"`
	UserID     uuid.UUID `json:"userId"`
	Timestamp  time.Time `json:"timestamp"`
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Publisher sends committed checkout transitions to Kafka, keyed by book so a
// book's events stay ordered within a partition.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	cb       circuit_breaker.CircuitBreaker
}

func NewPublisher(producer sarama.SyncProducer, topic string, cb circuit_breaker.CircuitBreaker) *Publisher {
	return &Publisher{
		producer: producer,
		topic:    topic,
		cb:       cb,
	}
}

// Log is a no-op on a nil Publisher.
func (p *Publisher) Log(event CheckoutEvent) error {
	if p == nil {
		return nil
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.BookID.String()),
		Value: sarama.ByteEncoder(data),
	}
	return p.cb.Call(func() error {
		_, _, err := p.producer.SendMessage(msg)
		return err
	})
}

func DecodeCheckoutEvent(data []byte) (CheckoutEvent, error) {
	var event CheckoutEvent
	err := json.Unmarshal(data, &event)
	return event, err
}
