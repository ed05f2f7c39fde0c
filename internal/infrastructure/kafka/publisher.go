// Package kafka publica los eventos de dominio en Kafka (sarama).
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/jhoicas/retail-backoffice/internal/application/ports"
	"github.com/jhoicas/retail-backoffice/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

var _ ports.EventPublisher = (*Publisher)(nil)

// envelope es el cuerpo JSON de cada mensaje.
type envelope struct {
	EventID     string    `json:"event_id"`
	EventType   string    `json:"event_type"`
	AggregateID string    `json:"aggregate_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Payload     any       `json:"payload"`
}

// Publisher implementa ports.EventPublisher sobre un SyncProducer.
// Topic = prefijo + tipo de evento; la clave es el id del agregado.
type Publisher struct {
	producer    sarama.SyncProducer
	topicPrefix string
	log         *logger.Logger
}

// NewProducerConfig configuración del productor: acks de todas las réplicas y reintentos.
func NewProducerConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = 3
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.MaxMessageBytes = 1000000
	return config
}

// NewPublisher conecta con los brokers.
func NewPublisher(brokers []string, topicPrefix string, log *logger.Logger) (*Publisher, error) {
	producer, err := sarama.NewSyncProducer(brokers, NewProducerConfig())
	if err != nil {
		return nil, fmt.Errorf("crear productor kafka: %w", err)
	}
	p := NewPublisherWithProducer(producer, topicPrefix, log)
	p.log.Info().Strs("brokers", brokers).Msg("publicador kafka inicializado")
	return p, nil
}

// NewPublisherWithProducer usa un productor ya construido (tests con sarama/mocks).
func NewPublisherWithProducer(producer sarama.SyncProducer, topicPrefix string, log *logger.Logger) *Publisher {
	if log == nil {
		log = logger.Nop()
	}
	return &Publisher{producer: producer, topicPrefix: topicPrefix, log: log.Component("kafka")}
}

// Topic devuelve el topic de un tipo de evento.
func (p *Publisher) Topic(eventType string) string {
	return p.topicPrefix + eventType
}

// Publish serializa el evento y lo envía propagando el contexto de traza en los headers.
func (p *Publisher) Publish(ctx context.Context, event ports.Event) error {
	topic := p.Topic(event.Type)
	ctx, span := otel.Tracer("kafka-publisher").Start(ctx, "kafka.publish",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", topic),
			attribute.String("event.type", event.Type),
			attribute.String("event.id", event.ID),
		),
	)
	defer span.End()

	body, err := json.Marshal(envelope{
		EventID:     event.ID,
		EventType:   event.Type,
		AggregateID: event.AggregateID,
		OccurredAt:  event.OccurredAt,
		Payload:     event.Payload,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "marshal")
		return fmt.Errorf("serializar evento %s: %w", event.Type, err)
	}

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	headers := []sarama.RecordHeader{
		{Key: []byte("event_type"), Value: []byte(event.Type)},
		{Key: []byte("event_id"), Value: []byte(event.ID)},
	}
	for k, v := range carrier {
		headers = append(headers, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic:   topic,
		Key:     sarama.StringEncoder(event.AggregateID),
		Value:   sarama.ByteEncoder(body),
		Headers: headers,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send")
		return fmt.Errorf("enviar evento %s: %w", event.Type, err)
	}

	span.SetAttributes(
		attribute.Int("messaging.kafka.partition", int(partition)),
		attribute.Int64("messaging.kafka.offset", offset),
	)
	p.log.Debug().
		Str("event_id", event.ID).
		Str("topic", topic).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("evento publicado")
	return nil
}

// Close cierra el productor.
func (p *Publisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
