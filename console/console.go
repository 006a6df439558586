package console

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/kochabx/workforce/auth/guard"
	"github.com/kochabx/workforce/config"
	"github.com/kochabx/workforce/errors"
)

// 构建时注入
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

const (
	MsgLoginRequired = "Please log in to continue."
	MsgAccessDenied  = "Access denied. You do not have permission to view this page."

	// annotationRoute 命令对应的页面路径
	annotationRoute   = "route"
	// annotationOffline 不需要装配环境的命令
	annotationOffline = "offline"
)

// Console 持有跨命令共享的环境，交互模式下每行输入都会重建命令树
type Console struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	fs     afero.Fs

	cfgFile   string
	ephemeral bool
	settings  *config.Settings
	env       *Env
	inShell   bool
}

type Option func(*Console)

func WithIO(in io.Reader, out, errOut io.Writer) Option {
	return func(c *Console) {
		c.in, c.out, c.errOut = in, out, errOut
	}
}

// WithFs 导入导出文件使用的文件系统
func WithFs(fs afero.Fs) Option {
	return func(c *Console) {
		c.fs = fs
	}
}

// WithSettings 使用给定配置，不再读取配置文件
func WithSettings(s *config.Settings) Option {
	return func(c *Console) {
		c.settings = s
	}
}

func New(opts ...Option) *Console {
	c := &Console{
		in:     os.Stdin,
		out:    os.Stdout,
		errOut: os.Stderr,
		fs:     afero.NewOsFs(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Env 已装配的环境，首次执行命令前为 nil
func (c *Console) Env() *Env {
	return c.env
}

// Close 释放环境
func (c *Console) Close() error {
	if c.env == nil {
		return nil
	}
	err := c.env.Close()
	c.env = nil
	return err
}

// Execute 执行一次命令行
func (c *Console) Execute(ctx context.Context, args []string) error {
	root := c.Root()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// Root 构建命令树
func (c *Console) Root() *cobra.Command {
	root := &cobra.Command{
		Use:   "workforce",
		Short: "Console for the employee, project and skill administration API",
		Long: `workforce talks to the administration REST API on behalf of a logged-in user.

The session survives restarts through the configured token store and ends
when the token expires, after a period of inactivity in the shell, or when
the server rejects the token.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[annotationOffline] == "true" {
				return nil
			}
			if err := c.open(cmd.Context()); err != nil {
				return err
			}
			return c.guard(cmd)
		},
	}
	root.SetIn(c.in)
	root.SetOut(c.out)
	root.SetErr(c.errOut)

	if !c.inShell {
		root.PersistentFlags().StringVarP(&c.cfgFile, "config", "c", c.cfgFile, "config file (default ./workforce.yaml)")
		root.PersistentFlags().BoolVar(&c.ephemeral, "ephemeral", c.ephemeral, "keep the token in memory only")
	}

	root.AddCommand(
		c.loginCmd(),
		c.logoutCmd(),
		c.registerCmd(),
		c.whoamiCmd(),
		c.routesCmd(),
		c.employeesCmd(),
		c.projectsCmd(),
		c.skillsCmd(),
		c.adminCmd(),
		c.aiCmd(),
		c.auditCmd(),
		c.versionCmd(),
	)
	if !c.inShell {
		root.AddCommand(c.shellCmd())
	}
	return root
}

func (c *Console) open(ctx context.Context) error {
	if c.env != nil {
		return nil
	}

	s, cfg := c.settings, (*config.Config)(nil)
	if s == nil {
		var err error
		s, cfg, err = config.Load(c.cfgFile)
		if err != nil {
			return err
		}
	}
	if c.ephemeral {
		s.Store.Driver = "memory"
	}

	env, err := Open(ctx, s, cfg, c.errOut)
	if err != nil {
		return err
	}
	c.env = env
	return nil
}

// guard 按命令所在页面检查会话，未登录时跳转登录页，角色不足时跳转无权限页
func (c *Console) guard(cmd *cobra.Command) error {
	path := routeOf(cmd)
	if path == "" {
		return nil
	}

	res := c.env.Nav.CheckPath(c.env.Session.Session(), path)
	switch res.Outcome {
	case guard.RedirectLogin:
		c.env.Notifier.Redirect(res.Redirect)
		return errors.Unauthorized(MsgLoginRequired)
	case guard.RedirectDenied:
		c.env.Notifier.Redirect(res.Redirect)
		return errors.Forbidden(MsgAccessDenied)
	}
	return nil
}

// routeOf 取最近的祖先命令上标注的页面
func routeOf(cmd *cobra.Command) string {
	for p := cmd; p != nil; p = p.Parent() {
		if r, ok := p.Annotations[annotationRoute]; ok {
			return r
		}
	}
	return ""
}

func route(path string) map[string]string {
	return map[string]string{annotationRoute: path}
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// Message 面向用户的错误消息
func Message(err error) string {
	var e *errors.Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}
