// Package mongo MongoDB 客户端包装
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var ErrInvalidConfig = errors.New("mongo: invalid config")

// Mongo MongoDB 客户端
type Mongo struct {
	Client *mongo.Client
	config *Config
}

// New 连接并 ping 主节点
func New(ctx context.Context, config *Config) (*Mongo, error) {
	if config == nil {
		return nil, ErrInvalidConfig
	}
	if err := config.init(); err != nil {
		return nil, err
	}

	opts := options.Client().
		ApplyURI(config.uri()).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)).
		SetMaxPoolSize(uint64(config.MaxPoolSize)).
		SetConnectTimeout(config.Timeout).
		SetServerSelectionTimeout(config.Timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	m := &Mongo{Client: client, config: config}
	if err := m.Ping(ctx); err != nil {
		_ = m.Close()
		return nil, err
	}
	return m, nil
}

func (m *Mongo) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.config.Timeout)
	defer cancel()
	return m.Client.Ping(ctx, readpref.Primary())
}

// Collection 配置中的库和集合
func (m *Mongo) Collection() *mongo.Collection {
	return m.Client.Database(m.config.Database).Collection(m.config.Collection)
}

func (m *Mongo) Close() error {
	if m.Client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), m.config.Timeout)
	defer cancel()
	return m.Client.Disconnect(ctx)
}
