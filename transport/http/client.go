package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/kochabx/workforce/errors"
	"github.com/kochabx/workforce/log"
	"github.com/kochabx/workforce/transport/http/metrics"
)

const (
	defaultBufferSize = 4096
	maxBufferSize     = 1024 * 1024
	maxResponseSize   = 16 * 1024 * 1024

	ContentTypeJSON = "application/json"
)

// RequestInterceptor 发送前修改请求
type RequestInterceptor func(req *http.Request) error

// ResponseInterceptor 收到响应后调用，所有状态码都会经过
type ResponseInterceptor func(ctx context.Context, req *http.Request, resp *Response)

// Response 已读完的响应
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Client 面向 JSON API 的客户端
//
// 不做自动重试。状态码不低于 400 时返回 *errors.Error，拿不到响应时返回 errors.Network。
type Client struct {
	base    *url.URL
	client  *http.Client
	policy  Policy
	metrics *metrics.Client
	log     *log.Logger

	before []RequestInterceptor
	after  []ResponseInterceptor

	bufferPool sync.Pool
}

// Option 客户端选项
type Option func(*Client)

// WithHTTPClient 替换底层 http.Client
func WithHTTPClient(c *http.Client) Option {
	return func(cli *Client) {
		if c != nil {
			cli.client = c
		}
	}
}

// WithTimeout 单个请求超时
func WithTimeout(d time.Duration) Option {
	return func(cli *Client) {
		if d > 0 {
			cli.client.Timeout = d
		}
	}
}

// WithRequestInterceptors 追加请求拦截器
func WithRequestInterceptors(in ...RequestInterceptor) Option {
	return func(cli *Client) {
		cli.before = append(cli.before, in...)
	}
}

// WithResponseInterceptors 追加响应拦截器
func WithResponseInterceptors(in ...ResponseInterceptor) Option {
	return func(cli *Client) {
		cli.after = append(cli.after, in...)
	}
}

// WithPolicy 错误分类使用的策略
func WithPolicy(p Policy) Option {
	return func(cli *Client) {
		cli.policy = p
	}
}

// WithMetrics 记录请求指标
func WithMetrics(m *metrics.Client) Option {
	return func(cli *Client) {
		cli.metrics = m
	}
}

// WithLogger 设置日志记录器
func WithLogger(l *log.Logger) Option {
	return func(cli *Client) {
		if l != nil {
			cli.log = l
		}
	}
}

// New baseURL 形如 http://localhost:8888/api
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host required", baseURL)
	}

	cli := &Client{
		base:   base,
		client: &http.Client{Timeout: 30 * time.Second},
		policy: DefaultPolicy(),
		log:    log.G.Named("http"),
		bufferPool: sync.Pool{
			New: func() any {
				return bytes.NewBuffer(make([]byte, 0, defaultBufferSize))
			},
		},
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli, nil
}

// BaseURL 基础地址
func (cli *Client) BaseURL() string {
	return cli.base.String()
}

// URL 拼接基础地址、路径和查询参数
func (cli *Client) URL(path string, query url.Values) string {
	u := *cli.base
	u.Path = strings.TrimRight(cli.base.Path, "/") + "/" + strings.TrimLeft(path, "/")
	u.RawQuery = query.Encode()
	return u.String()
}

// Do 发送请求，out 非 nil 时解码响应体
func (cli *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	req, err := cli.newRequest(ctx, method, cli.URL(path, query), body)
	if err != nil {
		return errors.Wrap(err, errors.UnknownCode, "build request %s %s", method, path)
	}

	for _, in := range cli.before {
		if err := in(req); err != nil {
			return errors.Wrap(err, errors.UnknownCode, "request interceptor")
		}
	}

	start := time.Now()
	resp, err := cli.client.Do(req)
	if err != nil {
		cli.observe(method, 0, start)
		cli.log.Warn().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return errors.Network(err, "%s %s: no response from server", method, path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	cli.observe(method, resp.StatusCode, start)
	if err != nil {
		return errors.Network(err, "%s %s: read response", method, path)
	}

	r := &Response{Status: resp.StatusCode, Header: resp.Header, Body: data}
	for _, in := range cli.after {
		in(ctx, req, r)
	}

	cli.log.Debug().Str("method", method).Str("path", path).Int("status", r.Status).Dur("duration", time.Since(start)).Msg("request done")

	if r.Status >= http.StatusBadRequest {
		return cli.toError(r)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrap(err, errors.UnknownCode, "decode response of %s %s", method, path)
	}
	return nil
}

// Get 发送 GET 请求
func (cli *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return cli.Do(ctx, http.MethodGet, path, query, nil, out)
}

// Post 发送 POST 请求
func (cli *Client) Post(ctx context.Context, path string, body, out any) error {
	return cli.Do(ctx, http.MethodPost, path, nil, body, out)
}

// Put 发送 PUT 请求
func (cli *Client) Put(ctx context.Context, path string, body, out any) error {
	return cli.Do(ctx, http.MethodPut, path, nil, body, out)
}

// Patch 发送 PATCH 请求
func (cli *Client) Patch(ctx context.Context, path string, body, out any) error {
	return cli.Do(ctx, http.MethodPatch, path, nil, body, out)
}

// Delete 发送 DELETE 请求
func (cli *Client) Delete(ctx context.Context, path string) error {
	return cli.Do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (cli *Client) newRequest(ctx context.Context, method, target string, body any) (*http.Request, error) {
	var reader io.Reader
	switch v := body.(type) {
	case nil:
	case io.Reader:
		reader = v
	default:
		buf := cli.getBuffer()
		defer cli.putBuffer(buf)
		if err := json.NewEncoder(buf).Encode(v); err != nil {
			return nil, err
		}
		// 缓冲区要还回池里，请求体需要自己的副本
		reader = bytes.NewReader(bytes.Clone(buf.Bytes()))
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", ContentTypeJSON)
	if reader != nil {
		req.Header.Set("Content-Type", ContentTypeJSON)
	}
	return req, nil
}

func (cli *Client) getBuffer() *bytes.Buffer {
	buf := cli.bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func (cli *Client) putBuffer(buf *bytes.Buffer) {
	if buf.Cap() <= maxBufferSize {
		cli.bufferPool.Put(buf)
	}
}

func (cli *Client) observe(method string, status int, start time.Time) {
	if cli.metrics != nil {
		cli.metrics.ObserveRequest(method, status, time.Since(start))
	}
}

// toError 把错误响应转成带种类的 *errors.Error
func (cli *Client) toError(r *Response) error {
	msg := parseBody(r.Body).Message
	if msg == "" {
		msg = http.StatusText(r.Status)
	}

	d := Decide(r.Status, r.Body, cli.policy)
	switch d.Kind {
	case errors.KindUnauthorized:
		return errors.Unauthorized("%s", msg)
	case errors.KindForbidden:
		return errors.Forbidden("%s", msg)
	case errors.KindNotFoundPrincipal:
		return errors.NotFoundPrincipal("%s", msg)
	default:
		return errors.New(r.Status, "%s", msg)
	}
}
