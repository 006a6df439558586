package kafka

import (
	"errors"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/kochabx/workforce/core/tag"
)

var ErrInvalidConfig = errors.New("kafka: invalid config")

// Config Kafka 客户端配置
type Config struct {
	Brokers  []string `json:"brokers" mapstructure:"brokers" default:"localhost:9092"`
	Username string   `json:"username" mapstructure:"username"`
	Password string   `json:"password" mapstructure:"password"`
	// Balancer 分区策略: least-bytes | hash
	Balancer               string        `json:"balancer" mapstructure:"balancer" default:"hash"`
	AllowAutoTopicCreation bool          `json:"allowAutoTopicCreation" mapstructure:"allow_auto_topic_creation"`
	Timeout                time.Duration `json:"timeout" mapstructure:"timeout" default:"3s"`
	CloseTimeout           time.Duration `json:"closeTimeout" mapstructure:"close_timeout" default:"5s"`
	BatchTimeout           time.Duration `json:"batchTimeout" mapstructure:"batch_timeout" default:"200ms"`
}

// ApplyDefaults 应用默认值
func (c *Config) ApplyDefaults() error {
	return tag.ApplyDefaults(c)
}

func (c *Config) balancer() kafka.Balancer {
	if c.Balancer == "least-bytes" {
		return &kafka.LeastBytes{}
	}
	return &kafka.Hash{}
}
