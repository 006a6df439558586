package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/errgroup"

	"github.com/kochabx/workforce/errors"
)

const (
	Asc  = "asc"
	Desc = "desc"
)

// Sort 排序字段和方向
type Sort struct {
	Field     string `json:"field" validate:"required"`
	Direction string `json:"direction" validate:"sortdir"`
}

func (s Sort) String() string {
	return s.Field + "," + s.Direction
}

// PageRequest 分页参数，Page 从 0 开始
type PageRequest struct {
	Page int   `json:"page" validate:"min=0"`
	Size int   `json:"size" validate:"min=1,max=100"`
	Sort *Sort `json:"sort,omitempty"`
}

// Query 编码为 page、size、sort=field,direction
func (r PageRequest) Query() url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(r.Page))
	q.Set("size", strconv.Itoa(r.Size))
	if r.Sort != nil && r.Sort.Field != "" {
		q.Set("sort", r.Sort.String())
	}
	return q
}

// Page 一页数据
type Page[T any] struct {
	Content       []T  `json:"content"`
	TotalElements int  `json:"totalElements"`
	TotalPages    int  `json:"totalPages"`
	Number        int  `json:"number"`
	Size          int  `json:"size"`
	First         bool `json:"first"`
	Last          bool `json:"last"`
}

// UnmarshalJSON 也接受不分页的纯数组
func (p *Page[T]) UnmarshalJSON(data []byte) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*p = Page[T]{
			Content:       items,
			TotalElements: len(items),
			TotalPages:    1,
			Size:          len(items),
			First:         true,
			Last:          true,
		}
		return nil
	}

	type plain Page[T]
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = Page[T](v)
	return nil
}

// PageFunc 拉取一页
type PageFunc[T any] func(ctx context.Context, req PageRequest) (*Page[T], error)

// maxListPages ListAll 最多拉取的页数
const maxListPages = 1000

// ListAll 先取第一页得到总页数，其余页交给协程池并发拉取，结果按页序拼接
func ListAll[T any](ctx context.Context, fetch PageFunc[T], size int, sort *Sort, workers int) ([]T, error) {
	first, err := fetch(ctx, PageRequest{Page: 0, Size: size, Sort: sort})
	if err != nil {
		return nil, err
	}
	total, err := pageCount(first, size)
	if err != nil {
		return nil, err
	}
	if total <= 1 {
		return first.Content, nil
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, errors.Wrap(err, errors.UnknownCode, "create worker pool")
	}
	defer pool.Release()

	pages := make([][]T, total)
	pages[0] = first.Content

	g, gctx := errgroup.WithContext(ctx)
	for n := 1; n < total; n++ {
		done := make(chan error, 1)
		err := pool.Submit(func() {
			if err := gctx.Err(); err != nil {
				done <- err
				return
			}
			p, err := fetch(gctx, PageRequest{Page: n, Size: size, Sort: sort})
			if err == nil {
				pages[n] = p.Content
			}
			done <- err
		})
		if err != nil {
			g.Go(func() error { return errors.Wrap(err, errors.UnknownCode, "submit page %d", n) })
			break
		}
		g.Go(func() error { return <-done })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]T, 0, max(0, min(first.TotalElements, total*len(first.Content))))
	for _, p := range pages {
		out = append(out, p...)
	}
	return out, nil
}

// pageCount 服务端给的总页数与按总条数推算的取较小者，超过上限视为响应异常
func pageCount[T any](first *Page[T], size int) (int, error) {
	total := first.TotalPages
	if first.TotalElements > 0 && size > 0 {
		total = min(total, (first.TotalElements+size-1)/size)
	}
	if total > maxListPages {
		return 0, errors.New(http.StatusBadGateway, "server reported %d pages, more than %d", total, maxListPages)
	}
	return total, nil
}
