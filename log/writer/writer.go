package writer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// RotateMode 日志轮转模式
type RotateMode string

const (
	// RotateModeSize 按大小轮转
	RotateModeSize RotateMode = "size"
	// RotateModeTime 按时间轮转
	RotateModeTime RotateMode = "time"
)

// RotateConfig 日志轮转配置
type RotateConfig struct {
	Mode     RotateMode
	Filepath string
	Filename string
	FileExt  string

	MaxSize    int  // 单个日志文件最大大小(MB)，按大小轮转
	MaxBackups int  // 保留的旧日志文件数量，按大小轮转
	MaxAgeDays int  // 日志文件保留天数
	Compress   bool // 是否压缩旧日志文件

	RotationHours int // 轮转时间间隔(小时)，按时间轮转
}

// Console 创建控制台 writer；命令行输出占用 stdout，日志统一写 stderr
func Console() zerolog.ConsoleWriter {
	return ConsoleTo(os.Stderr)
}

// ConsoleTo 创建输出到 w 的控制台 writer
func ConsoleTo(w io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.DateTime,
		FormatLevel: func(i any) string {
			return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
		},
	}
}

// File 创建轮转文件 writer
func File(c RotateConfig) (io.WriteCloser, error) {
	switch c.Mode {
	case RotateModeSize, "":
		return &lumberjack.Logger{
			Filename:   c.path(""),
			MaxSize:    c.MaxSize,
			MaxBackups: c.MaxBackups,
			MaxAge:     c.MaxAgeDays,
			Compress:   c.Compress,
		}, nil
	case RotateModeTime:
		w, err := rotatelogs.New(
			c.path("%Y%m%d%H%M"),
			rotatelogs.WithLinkName(c.path("")),
			rotatelogs.WithMaxAge(time.Duration(c.MaxAgeDays)*24*time.Hour),
			rotatelogs.WithRotationTime(time.Duration(c.RotationHours)*time.Hour),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create time rotate writer: %w", err)
		}
		return w, nil
	default:
		return nil, fmt.Errorf("unsupported rotate mode: %q", c.Mode)
	}
}

// path 返回日志文件完整路径，format 非空时插入到文件名和扩展名之间
func (c *RotateConfig) path(format string) string {
	var b strings.Builder
	b.WriteString(c.Filename)
	if format != "" {
		b.WriteByte('.')
		b.WriteString(format)
	}
	b.WriteByte('.')
	b.WriteString(c.FileExt)
	return filepath.Join(c.Filepath, b.String())
}
