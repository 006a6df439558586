package etcd

import (
	"context"
	"errors"
	"fmt"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
)

var (
	ErrEtcdNotInitialized = errors.New("etcd client not initialized")
	ErrInvalidConfig      = errors.New("etcd: invalid config")
)

// Etcd etcd 客户端
type Etcd struct {
	Client *clientv3.Client
	config *Config
}

// New 创建客户端并测试连接
func New(ctx context.Context, config *Config) (*Etcd, error) {
	if config == nil {
		return nil, ErrInvalidConfig
	}
	if err := config.init(); err != nil {
		return nil, err
	}

	client, err := clientv3.New(clientv3.Config{
		Endpoints:            config.Endpoints,
		Username:             config.Username,
		Password:             config.Password,
		DialTimeout:          config.DialTimeout,
		DialKeepAliveTime:    config.KeepAliveTime,
		DialKeepAliveTimeout: config.KeepAliveTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to etcd: %w", err)
	}

	e := &Etcd{Client: client, config: config}
	if err := e.Ping(ctx); err != nil {
		_ = e.Close()
		return nil, err
	}
	return e, nil
}

// Ping 对第一个端点做状态检查
func (e *Etcd) Ping(ctx context.Context) error {
	if e.Client == nil {
		return ErrEtcdNotInitialized
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := e.Client.Status(ctx, e.config.Endpoints[0])
	return err
}

// Close 关闭连接
func (e *Etcd) Close() error {
	if e.Client == nil {
		return nil
	}
	err := e.Client.Close()
	e.Client = nil
	return err
}
