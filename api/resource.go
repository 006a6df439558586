package api

import (
	"context"
	"strconv"
)

// resource 通用的增删改查
type resource[T any] struct {
	c    *Client
	path string
	sort Sort
}

func (r resource[T]) item(id int64) string {
	return r.path + "/" + strconv.FormatInt(id, 10)
}

// List 拉取一页，未指定排序时使用资源的默认排序
func (r resource[T]) List(ctx context.Context, req PageRequest) (*Page[T], error) {
	if req.Size == 0 {
		req.Size = r.c.pageSize
	}
	if req.Sort == nil {
		s := r.sort
		req.Sort = &s
	}
	if err := r.c.check(ctx, req); err != nil {
		return nil, err
	}

	var page Page[T]
	if err := r.c.http.Get(ctx, r.path, req.Query(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// All 拉取全部数据
func (r resource[T]) All(ctx context.Context) ([]T, error) {
	s := r.sort
	return ListAll(ctx, r.List, r.c.pageSize, &s, r.c.workers)
}

func (r resource[T]) Get(ctx context.Context, id int64) (*T, error) {
	var out T
	if err := r.c.http.Get(ctx, r.item(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r resource[T]) create(ctx context.Context, in any) (*T, error) {
	if err := r.c.check(ctx, in); err != nil {
		return nil, err
	}
	var out T
	if err := r.c.http.Post(ctx, r.path, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r resource[T]) update(ctx context.Context, id int64, in any) (*T, error) {
	if err := r.c.check(ctx, in); err != nil {
		return nil, err
	}
	var out T
	if err := r.c.http.Put(ctx, r.item(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r resource[T]) Delete(ctx context.Context, id int64) error {
	return r.c.http.Delete(ctx, r.item(id))
}

// Employees 员工
type Employees struct {
	resource[Employee]
}

func (e *Employees) Create(ctx context.Context, in Employee) (*Employee, error) {
	return e.create(ctx, in)
}

func (e *Employees) Update(ctx context.Context, id int64, in Employee) (*Employee, error) {
	return e.update(ctx, id, in)
}

// Skills 技能
type Skills struct {
	resource[Skill]
}

func (s *Skills) Create(ctx context.Context, in Skill) (*Skill, error) {
	return s.create(ctx, in)
}

func (s *Skills) Update(ctx context.Context, id int64, in Skill) (*Skill, error) {
	return s.update(ctx, id, in)
}
