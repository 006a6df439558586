package http

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kochabx/workforce/core/tag"
	"github.com/kochabx/workforce/log"
	middleware "github.com/kochabx/workforce/middleware/http"
	"github.com/kochabx/workforce/transport"
	"github.com/kochabx/workforce/transport/http/metrics"
)

var _ transport.Server = (*Server)(nil)

const (
	defaultName = "status"
	defaultAddr = "127.0.0.1:9464"
)

// Meta is the metadata of the server.
type Meta struct {
	Name string
}

// ServerOptions 本地状态服务的端点
type ServerOptions struct {
	MetricsPath string `json:"metricsPath" mapstructure:"metrics_path" default:"/metrics"`
	HealthPath  string `json:"healthPath" mapstructure:"health_path" default:"/health"`
	SessionPath string `json:"sessionPath" mapstructure:"session_path" default:"/session"`
}

// StatusFunc 返回 /session 端点的内容
type StatusFunc func() any

// Server 本地状态服务：指标、健康检查和会话状态
type Server struct {
	meta    Meta
	options ServerOptions
	status  StatusFunc
	server  *http.Server
}

type ServerOption func(*Server)

func WithMeta(meta Meta) ServerOption {
	return func(s *Server) {
		s.meta = meta
	}
}

func WithServerOptions(o ServerOptions) ServerOption {
	return func(s *Server) {
		s.options = o
	}
}

func WithStatus(fn StatusFunc) ServerOption {
	return func(s *Server) {
		s.status = fn
	}
}

func NewServer(addr string, opts ...ServerOption) *Server {
	s := &Server{}
	for _, opt := range opts {
		opt(s)
	}
	if err := tag.ApplyDefaults(&s.options); err != nil {
		log.Error().Err(err).Send()
	}
	if s.meta.Name == "" {
		s.meta.Name = defaultName
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	logger := log.G.Named(s.meta.Name)
	r.Use(
		middleware.Recovery(middleware.RecoveryConfig{StackTrace: true, Logger: logger}),
		middleware.Logger(middleware.LoggerConfig{
			SkipPaths: []string{s.options.MetricsPath, s.options.HealthPath},
			Logger:    logger,
		}),
	)
	s.routes(r)

	s.server = &http.Server{Addr: addr, Handler: r}
	return s
}

func (s *Server) routes(r *gin.Engine) {
	r.GET(s.options.HealthPath, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET(s.options.MetricsPath, gin.WrapH(promhttp.HandlerFor(metrics.Prom.Registry(), promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})))

	if s.status != nil {
		r.GET(s.options.SessionPath, func(c *gin.Context) {
			c.JSON(http.StatusOK, s.status())
		})
	}
}

// Handler 路由，测试中直接调用
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) Run() error {
	if !transport.ValidateAddress(s.server.Addr) {
		log.Warn().Msgf("invalid address %s, using default address: %s", s.server.Addr, defaultAddr)
		s.server.Addr = defaultAddr
	}

	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	log.Info().Msgf("%s server listening on %s", s.meta.Name, ln.Addr())

	if err := s.server.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
