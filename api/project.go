package api

import (
	"context"
	"slices"
	"strconv"
)

// Projects 项目
type Projects struct {
	resource[Project]
}

func (p *Projects) Create(ctx context.Context, in ProjectInput) (*Project, error) {
	return p.create(ctx, in)
}

func (p *Projects) Update(ctx context.Context, id int64, in ProjectInput) (*Project, error) {
	return p.update(ctx, id, in)
}

// Patch 只提交变化的字段，没有变化时不发请求并返回 nil
func (p *Projects) Patch(ctx context.Context, id int64, patch ProjectPatch) (*Project, error) {
	if patch.Empty() {
		return nil, nil
	}
	if err := p.c.check(ctx, patch); err != nil {
		return nil, err
	}

	var out Project
	if err := p.c.http.Patch(ctx, p.item(id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ByEmployee 员工参与的项目
func (p *Projects) ByEmployee(ctx context.Context, employeeID int64) ([]Project, error) {
	var out []Project
	if err := p.c.http.Get(ctx, p.path+"/employee/"+strconv.FormatInt(employeeID, 10), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ProjectPatch 部分更新，nil 字段不会被序列化
type ProjectPatch struct {
	Name        *string `json:"projectName,omitempty" validate:"omitnil,min=1,max=255"`
	Description *string `json:"description,omitempty" validate:"omitnil,max=1024"`
	EmployeeIDs []int64 `json:"employeeIds,omitempty" validate:"omitnil,min=1"`
	SkillIDs    []int64 `json:"skillIds,omitempty" validate:"omitnil,min=1"`
}

func (p ProjectPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.EmployeeIDs == nil && p.SkillIDs == nil
}

// DiffProject 比较编辑前后的项目，关联 ID 按集合比较
func DiffProject(before Project, after ProjectInput) ProjectPatch {
	var patch ProjectPatch
	if before.Name != after.Name {
		name := after.Name
		patch.Name = &name
	}
	if before.Description != after.Description {
		desc := after.Description
		patch.Description = &desc
	}
	// 清空关联也算变化，非 nil 的空切片交给校验拒绝
	if !sameIDs(before.EmployeeIDs(), after.EmployeeIDs) {
		patch.EmployeeIDs = append([]int64{}, after.EmployeeIDs...)
	}
	if !sameIDs(before.SkillIDs(), after.SkillIDs) {
		patch.SkillIDs = append([]int64{}, after.SkillIDs...)
	}
	return patch
}

func sameIDs(a, b []int64) bool {
	a, b = slices.Clone(a), slices.Clone(b)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(slices.Compact(a), slices.Compact(b))
}
