package store

import (
	"context"

	"github.com/kochabx/workforce/store/etcd"
)

// Etcd 令牌存在 etcd 的一个键上
type Etcd struct {
	client *etcd.Etcd
	key    string
}

func NewEtcd(client *etcd.Etcd, key string) *Etcd {
	return &Etcd{client: client, key: key}
}

func (e *Etcd) Get(ctx context.Context) (string, error) {
	resp, err := e.client.Client.Get(ctx, e.key)
	if err != nil {
		return "", err
	}
	if len(resp.Kvs) == 0 || len(resp.Kvs[0].Value) == 0 {
		return "", ErrTokenNotFound
	}
	return string(resp.Kvs[0].Value), nil
}

func (e *Etcd) Set(ctx context.Context, token string) error {
	_, err := e.client.Client.Put(ctx, e.key, token)
	return err
}

func (e *Etcd) Clear(ctx context.Context) error {
	_, err := e.client.Client.Delete(ctx, e.key)
	return err
}

func (e *Etcd) Close() error {
	return e.client.Close()
}
