package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// File 把令牌写在本地文件里，权限 0600
type File struct {
	fs   afero.Fs
	path string
}

// NewFile fsys 为 nil 时使用操作系统文件系统
func NewFile(fsys afero.Fs, path string) *File {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &File{fs: fsys, path: path}
}

// DefaultPath 用户配置目录下的 workforce/token
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("store: locate config dir: %w", err)
	}
	return filepath.Join(dir, "workforce", "token"), nil
}

// Path 令牌文件位置
func (f *File) Path() string {
	return f.path
}

func (f *File) Get(context.Context) (string, error) {
	b, err := afero.ReadFile(f.fs, f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", err
	}

	token := strings.TrimSpace(string(b))
	if token == "" {
		return "", ErrTokenNotFound
	}
	return token, nil
}

// Set 先写临时文件再改名，读到的永远是完整令牌
func (f *File) Set(_ context.Context, token string) error {
	dir := filepath.Dir(f.path)
	if err := f.fs.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := afero.TempFile(f.fs, dir, ".token-*")
	if err != nil {
		return err
	}
	name := tmp.Name()

	if _, err := tmp.WriteString(token); err != nil {
		tmp.Close()
		_ = f.fs.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = f.fs.Remove(name)
		return err
	}
	if err := f.fs.Chmod(name, 0o600); err != nil {
		_ = f.fs.Remove(name)
		return err
	}
	return f.fs.Rename(name, f.path)
}

func (f *File) Clear(context.Context) error {
	err := f.fs.Remove(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (f *File) Close() error { return nil }
