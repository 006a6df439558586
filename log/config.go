package log

import (
	"github.com/kochabx/workforce/log/writer"
)

// Config 日志配置
type Config struct {
	Level  string     `json:"level" mapstructure:"level" default:"info" validate:"oneof=trace debug info warn error disabled"`
	Caller bool       `json:"caller" mapstructure:"caller"`
	File   FileConfig `json:"file" mapstructure:"file"`
}

// FileConfig 日志文件配置
type FileConfig struct {
	Enabled       bool              `json:"enabled" mapstructure:"enabled"`
	Filepath      string            `json:"filepath" mapstructure:"filepath" default:"log"`
	Filename      string            `json:"filename" mapstructure:"filename" default:"workforce"`
	FileExt       string            `json:"fileExt" mapstructure:"file_ext" default:"log"`
	RotateMode    writer.RotateMode `json:"rotateMode" mapstructure:"rotate_mode" default:"size"`
	MaxSize       int               `json:"maxSize" mapstructure:"max_size" default:"100"`
	MaxBackups    int               `json:"maxBackups" mapstructure:"max_backups" default:"5"`
	MaxAgeDays    int               `json:"maxAgeDays" mapstructure:"max_age_days" default:"30"`
	Compress      bool              `json:"compress" mapstructure:"compress"`
	RotationHours int               `json:"rotationHours" mapstructure:"rotation_hours" default:"24"`
}

func (c *FileConfig) toWriterConfig() writer.RotateConfig {
	return writer.RotateConfig{
		Mode:          c.RotateMode,
		Filepath:      c.Filepath,
		Filename:      c.Filename,
		FileExt:       c.FileExt,
		MaxSize:       c.MaxSize,
		MaxBackups:    c.MaxBackups,
		MaxAgeDays:    c.MaxAgeDays,
		Compress:      c.Compress,
		RotationHours: c.RotationHours,
	}
}
