package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	kmongo "github.com/kochabx/workforce/store/mongo"
)

// Mongo 令牌存成集合里 _id 为 key 的一个文档
type Mongo struct {
	client *kmongo.Mongo
	coll   *mongo.Collection
	key    string
}

type tokenDoc struct {
	ID    string `bson:"_id"`
	Token string `bson:"token"`
}

func NewMongo(client *kmongo.Mongo, key string) *Mongo {
	return &Mongo{client: client, coll: client.Collection(), key: key}
}

func (m *Mongo) Get(ctx context.Context) (string, error) {
	var doc tokenDoc
	err := m.coll.FindOne(ctx, bson.M{"_id": m.key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", err
	}
	if doc.Token == "" {
		return "", ErrTokenNotFound
	}
	return doc.Token, nil
}

func (m *Mongo) Set(ctx context.Context, token string) error {
	_, err := m.coll.ReplaceOne(ctx, bson.M{"_id": m.key}, tokenDoc{ID: m.key, Token: token}, options.Replace().SetUpsert(true))
	return err
}

func (m *Mongo) Clear(ctx context.Context) error {
	_, err := m.coll.DeleteOne(ctx, bson.M{"_id": m.key})
	return err
}

func (m *Mongo) Close() error {
	return m.client.Close()
}
