// Package store 持久化会话令牌，进程重启后会话可以恢复
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/kochabx/workforce/core/tag"
	"github.com/kochabx/workforce/store/db"
	"github.com/kochabx/workforce/store/etcd"
	"github.com/kochabx/workforce/store/mongo"
	"github.com/kochabx/workforce/store/redis"
)

// ErrTokenNotFound 没有保存的令牌
var ErrTokenNotFound = errors.New("store: token not found")

// Store 令牌存储，只有一个键
type Store interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	// Clear 幂等，令牌不存在不算错误
	Clear(ctx context.Context) error
	Close() error
}

const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverEtcd   = "etcd"
	DriverDB     = "db"
	DriverMongo  = "mongo"
)

// Config 令牌存储配置
type Config struct {
	Driver string `json:"driver" mapstructure:"driver" default:"file" validate:"oneof=memory file redis etcd db mongo"`
	// Prefix 远程存储的命名空间
	Prefix string       `json:"prefix" mapstructure:"prefix" default:"workforce"`
	Key    string       `json:"key" mapstructure:"key" default:"token"`
	File   FileConfig   `json:"file" mapstructure:"file"`
	Redis  redis.Config `json:"redis" mapstructure:"redis"`
	Etcd   etcd.Config  `json:"etcd" mapstructure:"etcd"`
	DB     db.Config    `json:"db" mapstructure:"db"`
	Mongo  mongo.Config `json:"mongo" mapstructure:"mongo"`
}

// FileConfig 文件存储配置，Path 为空时放在用户配置目录下
type FileConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// Open 按配置创建存储
func Open(ctx context.Context, cfg Config) (Store, error) {
	if err := tag.ApplyDefaults(&cfg); err != nil {
		return nil, err
	}

	switch cfg.Driver {
	case DriverMemory:
		return NewMemory(), nil
	case DriverFile:
		path := cfg.File.Path
		if path == "" {
			p, err := DefaultPath()
			if err != nil {
				return nil, err
			}
			path = p
		}
		return NewFile(nil, path), nil
	case DriverRedis:
		c, err := redis.New(ctx, &cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("store: open redis: %w", err)
		}
		return NewRedis(c, cfg.Prefix+":"+cfg.Key), nil
	case DriverEtcd:
		c, err := etcd.New(ctx, &cfg.Etcd)
		if err != nil {
			return nil, fmt.Errorf("store: open etcd: %w", err)
		}
		return NewEtcd(c, "/"+cfg.Prefix+"/"+cfg.Key), nil
	case DriverDB:
		c, err := db.New(ctx, &cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("store: open db: %w", err)
		}
		return NewDB(ctx, c, cfg.Key)
	case DriverMongo:
		c, err := mongo.New(ctx, &cfg.Mongo)
		if err != nil {
			return nil, fmt.Errorf("store: open mongo: %w", err)
		}
		return NewMongo(c, cfg.Prefix+":"+cfg.Key), nil
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
