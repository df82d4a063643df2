package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	sharedkafka "github.com/radieske/football-predictions/internal/shared/kafka"
	"github.com/radieske/football-predictions/pkg/contracts/events"
)

// messageWriter é o subconjunto do kafka.Writer usado aqui
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher encapsula o writer Kafka e o logger.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	log    *zap.Logger
}

// NewKafkaPublisher cria um publisher para um tópico Kafka.
// Em ambiente local ou dev tenta criar o tópico antes, sem falhar se não conseguir.
func NewKafkaPublisher(brokers, topic, env string, log *zap.Logger) (*KafkaPublisher, error) {
	if strings.TrimSpace(brokers) == "" {
		return nil, fmt.Errorf("kafka brokers not provided")
	}
	if env == "local" || env == "dev" {
		ensureTopic(strings.Split(brokers, ",")[0], topic, log)
	}
	return &KafkaPublisher{
		writer: sharedkafka.NewWriter(brokers, topic),
		topic:  topic,
		log:    log,
	}, nil
}

// ensureTopic usa o controller do cluster para emitir o CreateTopics
func ensureTopic(broker, topic string, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := kafka.DialContext(ctx, "tcp", broker)
	if err != nil {
		log.Warn("failed to connect to kafka", zap.Error(err))
		return
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		log.Warn("failed to get kafka controller", zap.Error(err))
		return
	}

	cconn, err := kafka.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	if err != nil {
		log.Warn("failed to dial controller", zap.Error(err))
		return
	}
	defer cconn.Close()

	// single-broker
	cfg := kafka.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1}
	if err := cconn.CreateTopics(cfg); err != nil && !strings.Contains(err.Error(), "already exists") {
		log.Warn("failed to create kafka topic", zap.String("topic", topic), zap.Error(err))
	} else if err == nil {
		log.Info("kafka topic created", zap.String("topic", topic))
	}
}

// Publish envia o resumo do cálculo, sem o payload completo.
// A chave da mensagem é a chave data+ligas, então recálculos da mesma
// combinação caem na mesma partição.
func (p *KafkaPublisher) Publish(ctx context.Context, e events.PredictionsComputed) error {
	e.Payload = nil
	value, err := json.Marshal(e)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(e.Key),
		Value: value,
		Time:  time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", p.topic, err)
	}

	p.log.Debug("published predictions event", zap.String("event_id", e.EventID), zap.String("key", e.Key))
	return nil
}

// Ping escreve uma mensagem de healthcheck no tópico
func (p *KafkaPublisher) Ping(ctx context.Context) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte("healthcheck"),
		Value: []byte(`{"ping":"ok"}`),
		Time:  time.Now(),
	})
}

// Close finaliza o writer e libera recursos associados.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
