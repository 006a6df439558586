package audit

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/segmentio/kafka-go"

	"github.com/kochabx/workforce/log"
	kafkacli "github.com/kochabx/workforce/store/kafka"
)

// Config 审计配置
type Config struct {
	Enabled bool            `json:"enabled" mapstructure:"enabled"`
	Topic   string          `json:"topic" mapstructure:"topic" default:"workforce.audit"`
	Buffer  int             `json:"buffer" mapstructure:"buffer" default:"64"`
	Kafka   kafkacli.Config `json:"kafka" mapstructure:"kafka"`
}

// LogSink 写入日志
type LogSink struct {
	Log *log.Logger
}

func (s LogSink) Write(_ context.Context, ev Event) error {
	s.Log.Info().
		Str("type", ev.Type).
		Str("subject", ev.Subject).
		Str("reason", ev.Reason).
		Interface("detail", ev.Detail).
		Time("at", ev.At).
		Msg("audit")
	return nil
}

func (LogSink) Close() error { return nil }

// KafkaSink 以主体为键写入 Kafka
type KafkaSink struct {
	client *kafkacli.Client
	writer *kafka.Writer
}

func NewKafkaSink(client *kafkacli.Client, topic string) *KafkaSink {
	return &KafkaSink{client: client, writer: client.Producer(topic)}
}

func (s *KafkaSink) Write(ctx context.Context, ev Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.writer.WriteMessages(ctx, kafka.Message{Key: []byte(ev.Subject), Value: b, Time: ev.At})
}

func (s *KafkaSink) Close() error {
	return s.client.Close()
}

// MemorySink 保存在内存中
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

func (s *MemorySink) Write(_ context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *MemorySink) Close() error { return nil }

func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

// Open 按配置创建审计器，总是写日志，启用时额外写 Kafka
func Open(cfg Config, logger *log.Logger) (*Auditor, error) {
	if logger == nil {
		logger = log.G.Named("audit")
	}
	sinks := []Sink{LogSink{Log: logger}}

	if cfg.Enabled {
		client, err := kafkacli.New(&cfg.Kafka, kafkacli.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, NewKafkaSink(client, cfg.Topic))
	}
	return New(cfg.Buffer, sinks...), nil
}

// Tail 以消费者组读取审计主题，直到 ctx 结束或 fn 返回错误
func Tail(ctx context.Context, cfg Config, groupID string, fn func(Event) error) error {
	client, err := kafkacli.New(&cfg.Kafka)
	if err != nil {
		return err
	}
	defer client.Close()

	reader := client.ConsumerGroup(cfg.Topic, groupID)
	for {
		m, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		var ev Event
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			log.Warn().Err(err).Int64("offset", m.Offset).Msg("skip malformed audit message")
			continue
		}
		if err := fn(ev); err != nil {
			return err
		}
	}
}
