package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kochabx/workforce/store/db"
)

// tokenRecord workforce_tokens 表的一行
type tokenRecord struct {
	Name      string `gorm:"primaryKey;size:64"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (tokenRecord) TableName() string {
	return "workforce_tokens"
}

// DB 令牌存在数据库表里，按名称一行
type DB struct {
	client *db.Client
	name   string
}

// NewDB 创建存储并迁移表结构
func NewDB(ctx context.Context, client *db.Client, name string) (*DB, error) {
	if err := client.DB().WithContext(ctx).AutoMigrate(&tokenRecord{}); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &DB{client: client, name: name}, nil
}

func (d *DB) Get(ctx context.Context) (string, error) {
	var rec tokenRecord
	err := d.client.DB().WithContext(ctx).Where("name = ?", d.name).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", err
	}
	return rec.Value, nil
}

func (d *DB) Set(ctx context.Context, token string) error {
	return d.client.DB().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&tokenRecord{Name: d.name, Value: token}).Error
}

func (d *DB) Clear(ctx context.Context) error {
	return d.client.DB().WithContext(ctx).Where("name = ?", d.name).Delete(&tokenRecord{}).Error
}

func (d *DB) Close() error {
	return d.client.Close()
}
