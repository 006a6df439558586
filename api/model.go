package api

// Skill 技能
type Skill struct {
	ID   int64  `json:"skillId,omitempty"`
	Name string `json:"name" validate:"required,max=255"`
}

// Employee 员工
type Employee struct {
	ID          int64  `json:"employeeId,omitempty"`
	Name        string `json:"name" validate:"required,max=255"`
	DateOfBirth string `json:"dateOfBirth" validate:"required,datetime=2006-01-02"`
	AvatarURL   string `json:"avatarUrl,omitempty" validate:"omitempty,url"`
	JobRole     string `json:"jobRole" validate:"required,max=255"`
	Gender      string `json:"gender" validate:"required"`
	Age         int    `json:"age" validate:"required,min=18,max=100"`
	Email       string `json:"email" validate:"required,email"`

	Skills   []Skill   `json:"skills,omitempty" validate:"-"`
	Projects []Project `json:"projects,omitempty" validate:"-"`
}

// HasSkill 员工是否具备某项技能
func (e Employee) HasSkill(skillID int64) bool {
	for _, s := range e.Skills {
		if s.ID == skillID {
			return true
		}
	}
	return false
}

// Project 项目，Employees 和 Skills 为服务端展开后的关联
type Project struct {
	ID          int64      `json:"projectId,omitempty"`
	Name        string     `json:"projectName"`
	Description string     `json:"description,omitempty"`
	Employees   []Employee `json:"employees,omitempty"`
	Skills      []Skill    `json:"skills,omitempty"`
}

// EmployeeIDs 关联员工的 ID
func (p Project) EmployeeIDs() []int64 {
	ids := make([]int64, 0, len(p.Employees))
	for _, e := range p.Employees {
		ids = append(ids, e.ID)
	}
	return ids
}

// SkillIDs 关联技能的 ID
func (p Project) SkillIDs() []int64 {
	ids := make([]int64, 0, len(p.Skills))
	for _, s := range p.Skills {
		ids = append(ids, s.ID)
	}
	return ids
}

// Input 转换为创建、更新用的请求体
func (p Project) Input() ProjectInput {
	return ProjectInput{
		Name:        p.Name,
		Description: p.Description,
		EmployeeIDs: p.EmployeeIDs(),
		SkillIDs:    p.SkillIDs(),
	}
}

// ProjectInput 创建、更新项目的请求体
type ProjectInput struct {
	Name        string  `json:"projectName" validate:"required,max=255"`
	Description string  `json:"description" validate:"max=1024"`
	EmployeeIDs []int64 `json:"employeeIds" validate:"min=1"`
	SkillIDs    []int64 `json:"skillIds" validate:"min=1"`
}

// Role 角色
type Role struct {
	ID   int64  `json:"roleId"`
	Name string `json:"roleName"`
}

// User 账号，Roles 不带 ROLE_ 前缀
type User struct {
	ID       int64    `json:"userId"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// AssignRoleRequest 为账号设置角色
type AssignRoleRequest struct {
	Username string   `json:"username" validate:"required"`
	Roles    []string `json:"roles" validate:"min=1,dive,required"`
}

// Credentials 登录凭据
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Registration 注册表单，ConfirmPassword 只在本地校验
type Registration struct {
	Username        string `json:"username" validate:"required,min=3,max=50"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"-" validate:"required,eqfield=Password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}
