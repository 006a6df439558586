package kafka

import (
	"context"
	"sync"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
	"golang.org/x/sync/errgroup"

	"github.com/kochabx/workforce/log"
)

// Client 管理按主题复用的生产者和消费者
type Client struct {
	config    *Config
	dialer    *kafka.Dialer
	transport *kafka.Transport
	logger    *log.Logger

	producers map[string]*kafka.Writer
	consumers map[string]*kafka.Reader
	mu        sync.RWMutex
}

// New 创建客户端，不会立即建立连接
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, err
	}

	o := &clientOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	c := &Client{
		config:    cfg,
		logger:    o.logger,
		producers: make(map[string]*kafka.Writer),
		consumers: make(map[string]*kafka.Reader),
	}
	if c.logger == nil {
		c.logger = log.G.Named("kafka")
	}

	c.dialer = &kafka.Dialer{Timeout: cfg.Timeout, DualStack: true}
	c.transport = &kafka.Transport{}
	if cfg.Username != "" && cfg.Password != "" {
		mechanism := plain.Mechanism{Username: cfg.Username, Password: cfg.Password}
		c.dialer.SASLMechanism = mechanism
		c.transport.SASL = mechanism
	}

	return c, nil
}

// Producer 获取指定主题的同步生产者
func (c *Client) Producer(topic string) *kafka.Writer {
	c.mu.RLock()
	if w, ok := c.producers[topic]; ok {
		c.mu.RUnlock()
		return w
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if w, ok := c.producers[topic]; ok {
		return w
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(c.config.Brokers...),
		Topic:                  topic,
		Balancer:               c.config.balancer(),
		Transport:              c.transport,
		AllowAutoTopicCreation: c.config.AllowAutoTopicCreation,
		BatchTimeout:           c.config.BatchTimeout,
	}
	c.producers[topic] = w
	return w
}

// ConsumerGroup 获取指定主题和消费者组的消费者
func (c *Client) ConsumerGroup(topic, groupID string) *kafka.Reader {
	key := topic + "-" + groupID

	c.mu.RLock()
	if r, ok := c.consumers[key]; ok {
		c.mu.RUnlock()
		return r
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.consumers[key]; ok {
		return r
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers: c.config.Brokers,
		Topic:   topic,
		GroupID: groupID,
		Dialer:  c.dialer,
	})
	c.consumers[key] = r
	return r
}

// Close 并发关闭全部生产者和消费者
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), c.config.CloseTimeout)
	defer cancel()

	eg, _ := errgroup.WithContext(ctx)
	for _, w := range c.producers {
		eg.Go(w.Close)
	}
	for _, r := range c.consumers {
		eg.Go(r.Close)
	}

	done := make(chan error, 1)
	go func() { done <- eg.Wait() }()

	clear(c.producers)
	clear(c.consumers)

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		c.logger.Warn().Msg("kafka close timed out")
		return ctx.Err()
	}
}

// Option 客户端选项
type Option func(*clientOptions)

type clientOptions struct {
	logger *log.Logger
}

// WithLogger 设置日志记录器
func WithLogger(l *log.Logger) Option {
	return func(o *clientOptions) {
		o.logger = l
	}
}
