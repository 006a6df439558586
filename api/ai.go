package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"slices"

	"github.com/kochabx/workforce/errors"
)

const (
	// MsgNoRecords 没有已生成的数据时无法继续生成
	MsgNoRecords = "No existing data to base new records on."
	// MsgInvalidFormat 生成结果不是数组
	MsgInvalidFormat = "Failed to generate more data: Invalid format"

	defaultTopic = "Data"
)

// Record 一条生成的记录，属性由模型决定
type Record map[string]any

// GenerateRequest 按主题生成数据
type GenerateRequest struct {
	Topic         string `json:"topic" validate:"required,max=50"`
	PropertyCount int    `json:"propertyCount" validate:"required,min=3,max=10"`
	RecordCount   int    `json:"recordCount" validate:"required,min=1,max=50"`
}

// GenerateMoreRequest 按已有属性继续生成
type GenerateMoreRequest struct {
	Topic       string   `json:"topic" validate:"required,max=50"`
	RecordCount int      `json:"recordCount" validate:"required,min=1,max=50"`
	Properties  []string `json:"properties" validate:"min=1,dive,required"`
}

// AI 数据生成
type AI struct {
	c *Client
}

func (a *AI) Generate(ctx context.Context, req GenerateRequest) ([]Record, error) {
	return a.post(ctx, "/ai/generate-data", req)
}

func (a *AI) GenerateMore(ctx context.Context, req GenerateMoreRequest) ([]Record, error) {
	return a.post(ctx, "/ai/generate-more-data", req)
}

func (a *AI) post(ctx context.Context, path string, req any) ([]Record, error) {
	if err := a.c.check(ctx, req); err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := a.c.http.Post(ctx, path, req, &raw); err != nil {
		return nil, err
	}
	return DecodeRecords(raw)
}

// DecodeRecords 解析生成结果。数组元素可以是对象，也可以是内容为对象的 JSON 字符串
func DecodeRecords(data []byte) ([]Record, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, errors.Wrap(err, errors.UnknownCode, MsgInvalidFormat)
	}

	out := make([]Record, 0, len(items))
	for i, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) > 0 && item[0] == '"' {
			var s string
			if err := json.Unmarshal(item, &s); err != nil {
				return nil, errors.Wrap(err, errors.UnknownCode, "record %d: %s", i, MsgInvalidFormat)
			}
			item = []byte(s)
		}

		var r Record
		if err := json.Unmarshal(item, &r); err != nil {
			return nil, errors.Wrap(err, errors.UnknownCode, "record %d: %s", i, MsgInvalidFormat)
		}
		out = append(out, r)
	}
	return out, nil
}

// Properties 第一条记录的属性名，按字母序
func Properties(records []Record) []string {
	if len(records) == 0 {
		return nil
	}
	keys := make([]string, 0, len(records[0]))
	for k := range records[0] {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Dataset 一次生成会话的结果
type Dataset struct {
	Topic       string   `json:"topic"`
	RecordCount int      `json:"recordCount"`
	Records     []Record `json:"records"`
}

// MoreRequest 以已有记录的属性继续生成
func (d *Dataset) MoreRequest() (GenerateMoreRequest, error) {
	if len(d.Records) == 0 {
		return GenerateMoreRequest{}, errors.BadRequest(MsgNoRecords)
	}
	topic := d.Topic
	if topic == "" {
		topic = defaultTopic
	}
	count := d.RecordCount
	if count <= 0 {
		count = 5
	}
	return GenerateMoreRequest{Topic: topic, RecordCount: count, Properties: Properties(d.Records)}, nil
}

// More 继续生成并追加到已有记录之后
func (d *Dataset) More(ctx context.Context, ai *AI) (int, error) {
	req, err := d.MoreRequest()
	if err != nil {
		return 0, err
	}
	records, err := ai.GenerateMore(ctx, req)
	if err != nil {
		return 0, err
	}
	d.Records = append(d.Records, records...)
	return len(records), nil
}

// Filename 导出文件名
func (d *Dataset) Filename() string {
	if d.Topic == "" {
		return "data.json"
	}
	return d.Topic + ".json"
}

// Export 以两空格缩进写出记录数组
func (d *Dataset) Export(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d.Records)
}
