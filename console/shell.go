package console

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kochabx/workforce/app"
	"github.com/kochabx/workforce/log"
	khttp "github.com/kochabx/workforce/transport/http"
	"github.com/kochabx/workforce/transport/http/metrics"
)

const prompt = "workforce> "

// statusView /session 端点的内容，不含令牌
type statusView struct {
	State     string    `json:"state"`
	Subject   string    `json:"subject,omitempty"`
	Roles     []string  `json:"roles,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitzero"`
	Countdown int       `json:"countdown,omitempty"`
}

func (c *Console) status() any {
	s := c.env.Session.Session()
	v := statusView{State: s.State().String(), Subject: s.Subject, Roles: s.Roles, ExpiresAt: s.ExpiresAt}
	if n, ok := c.env.Session.Countdown(); ok {
		v.Countdown = n
	}
	return v
}

func (c *Console) shellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive session; idle input ends the session after the inactivity window",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runShell(cmd.Context())
		},
	}
}

// runShell 交互循环和可选的状态服务一起由 app 管理，退出时关闭环境
func (c *Console) runShell(ctx context.Context) error {
	opts := []app.Option{
		app.WithContext(ctx),
		app.WithTask("shell", c.loop),
	}

	st := c.env.Settings.Status
	if st.Enabled {
		metrics.Prom.WithGoCollectorRuntimeMetrics()
		metrics.Prom.WithBuildInfoCollector()
		opts = append(opts, app.WithServer(khttp.NewServer(st.Addr,
			khttp.WithMeta(khttp.Meta{Name: "status"}),
			khttp.WithServerOptions(st.Endpoints),
			khttp.WithStatus(c.status),
		)))
	}

	if cfg := c.env.Config; cfg != nil {
		cfg.OnChange(func() {
			cfg.Read(func() {
				if level, err := zerolog.ParseLevel(c.env.Settings.Log.Level); err == nil {
					log.SetGlobalLevel(level)
				}
			})
		})
		if err := cfg.Watch(); err != nil {
			c.env.Log.Debug().Err(err).Msg("config watch disabled")
		}
	}

	return app.New(opts...).Run()
}

// loop 每行输入都算一次用户操作，重置无操作窗口
func (c *Console) loop(ctx context.Context) error {
	c.inShell = true
	defer func() { c.inShell = false }()

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(c.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	fmt.Fprint(c.out, prompt)
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			c.env.Session.Touch()

			args := strings.Fields(line)
			switch {
			case len(args) == 0:
			case args[0] == "exit" || args[0] == "quit":
				return nil
			default:
				if err := c.Execute(ctx, args); err != nil {
					fmt.Fprintf(c.errOut, "error: %s\n", Message(err))
				}
			}
			fmt.Fprint(c.out, prompt)
		}
	}
}
