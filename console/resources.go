package console

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kochabx/workforce/api"
	"github.com/kochabx/workforce/errors"
)

// pageFlags 列表命令的分页参数
type pageFlags struct {
	page int
	size int
	sort string
	all  bool
}

func (f *pageFlags) bind(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.page, "page", 0, "page number, starting at 0")
	cmd.Flags().IntVar(&f.size, "size", 0, "page size (default from config)")
	cmd.Flags().StringVar(&f.sort, "sort", "", "sort as field,direction")
	cmd.Flags().BoolVar(&f.all, "all", false, "fetch every page")
}

func (f *pageFlags) request() api.PageRequest {
	req := api.PageRequest{Page: f.page, Size: f.size}
	if f.sort != "" {
		field, dir, ok := strings.Cut(f.sort, ",")
		if !ok {
			dir = api.Asc
		}
		req.Sort = &api.Sort{Field: field, Direction: strings.ToLower(dir)}
	}
	return req
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.BadRequest("invalid id %q", arg)
	}
	return id, nil
}

func parseIDs(list []string) ([]int64, error) {
	out := make([]int64, 0, len(list))
	for _, s := range list {
		id, err := parseID(strings.TrimSpace(s))
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func (c *Console) table() *tabwriter.Writer {
	return tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
}

func (c *Console) footer(total, shown int) {
	if total > shown {
		c.printf("%d of %d\n", shown, total)
	}
}

func (c *Console) employeesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "employees",
		Aliases:     []string{"emp"},
		Short:       "Manage employees",
		Annotations: route("/"),
	}

	var pf pageFlags
	list := &cobra.Command{
		Use:   "list",
		Short: "List employees",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				items []api.Employee
				total int
			)
			if pf.all {
				all, err := c.env.API.Employees.All(cmd.Context())
				if err != nil {
					return err
				}
				items, total = all, len(all)
			} else {
				page, err := c.env.API.Employees.List(cmd.Context(), pf.request())
				if err != nil {
					return err
				}
				items, total = page.Content, page.TotalElements
			}

			tw := c.table()
			fmt.Fprintln(tw, "ID\tNAME\tJOB ROLE\tEMAIL\tAGE")
			for _, e := range items {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\n", e.ID, e.Name, e.JobRole, e.Email, e.Age)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			c.footer(total, len(items))
			return nil
		},
	}
	pf.bind(list)

	get := &cobra.Command{
		Use:   "get ID",
		Short: "Show an employee with skills and projects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			e, err := c.env.API.Employees.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			projects, err := c.env.API.Projects.ByEmployee(cmd.Context(), id)
			if err != nil {
				return err
			}

			c.printf("%d %s <%s>\n", e.ID, e.Name, e.Email)
			c.printf("born %s, age %d, %s, %s\n", e.DateOfBirth, e.Age, e.Gender, e.JobRole)
			for _, s := range e.Skills {
				c.printf("  skill   %s\n", s.Name)
			}
			for _, p := range projects {
				c.printf("  project %s\n", p.Name)
			}
			return nil
		},
	}

	var in api.Employee
	create := &cobra.Command{
		Use:   "create",
		Short: "Add an employee",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := c.env.API.Employees.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			c.printf("Employee %d created\n", e.ID)
			return nil
		},
	}
	bindEmployee(create, &in)

	var upd api.Employee
	update := &cobra.Command{
		Use:   "update ID",
		Short: "Replace an employee's details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			current, err := c.env.API.Employees.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			merged := mergeEmployee(cmd, *current, upd)
			if _, err := c.env.API.Employees.Update(cmd.Context(), id, merged); err != nil {
				return err
			}
			c.printf("Employee updated successfully\n")
			return nil
		},
	}
	bindEmployee(update, &upd)

	cmd.AddCommand(list, get, create, update, c.deleteCmd("employee", func(cmd *cobra.Command, id int64) error {
		return c.env.API.Employees.Delete(cmd.Context(), id)
	}))
	return cmd
}

func bindEmployee(cmd *cobra.Command, e *api.Employee) {
	f := cmd.Flags()
	f.StringVar(&e.Name, "name", "", "full name")
	f.StringVar(&e.DateOfBirth, "dob", "", "date of birth, YYYY-MM-DD")
	f.StringVar(&e.AvatarURL, "avatar", "", "avatar URL")
	f.StringVar(&e.JobRole, "job-role", "", "job role")
	f.StringVar(&e.Gender, "gender", "", "gender")
	f.IntVar(&e.Age, "age", 0, "age, 18 to 100")
	f.StringVar(&e.Email, "email", "", "email address")
}

// mergeEmployee 只覆盖命令行上给出的字段
func mergeEmployee(cmd *cobra.Command, cur, in api.Employee) api.Employee {
	f := cmd.Flags()
	if f.Changed("name") {
		cur.Name = in.Name
	}
	if f.Changed("dob") {
		cur.DateOfBirth = in.DateOfBirth
	}
	if f.Changed("avatar") {
		cur.AvatarURL = in.AvatarURL
	}
	if f.Changed("job-role") {
		cur.JobRole = in.JobRole
	}
	if f.Changed("gender") {
		cur.Gender = in.Gender
	}
	if f.Changed("age") {
		cur.Age = in.Age
	}
	if f.Changed("email") {
		cur.Email = in.Email
	}
	return cur
}

func (c *Console) projectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "projects",
		Short:       "Manage projects",
		Annotations: route("/projects"),
	}

	var pf pageFlags
	list := &cobra.Command{
		Use:   "list",
		Short: "List projects with their team and skills",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				items []api.Project
				total int
			)
			if pf.all {
				all, err := c.env.API.Projects.All(cmd.Context())
				if err != nil {
					return err
				}
				items, total = all, len(all)
			} else {
				page, err := c.env.API.Projects.List(cmd.Context(), pf.request())
				if err != nil {
					return err
				}
				items, total = page.Content, page.TotalElements
			}

			tw := c.table()
			fmt.Fprintln(tw, "ID\tNAME\tEMPLOYEES\tSKILLS")
			for _, p := range items {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.ID, p.Name, employeeNames(p.Employees), skillNames(p.Skills))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			c.footer(total, len(items))
			return nil
		},
	}
	pf.bind(list)

	byEmployee := &cobra.Command{
		Use:   "by-employee ID",
		Short: "List the projects of an employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			projects, err := c.env.API.Projects.ByEmployee(cmd.Context(), id)
			if err != nil {
				return err
			}
			for _, p := range projects {
				c.printf("%d\t%s\n", p.ID, p.Name)
			}
			return nil
		},
	}

	var (
		in        api.ProjectInput
		employees []string
		skills    []string
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Add a project",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if in.EmployeeIDs, err = parseIDs(employees); err != nil {
				return err
			}
			if in.SkillIDs, err = parseIDs(skills); err != nil {
				return err
			}
			p, err := c.env.API.Projects.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			c.printf("Project %d created\n", p.ID)
			return nil
		},
	}
	bindProject(create, &in, &employees, &skills)

	var (
		upd       api.ProjectInput
		updEmps   []string
		updSkills []string
	)
	update := &cobra.Command{
		Use:   "update ID",
		Short: "Change a project, sending only the fields that differ",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			before, err := c.env.API.Projects.Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			after := before.Input()
			f := cmd.Flags()
			if f.Changed("name") {
				after.Name = upd.Name
			}
			if f.Changed("description") {
				after.Description = upd.Description
			}
			if f.Changed("employees") {
				if after.EmployeeIDs, err = parseIDs(updEmps); err != nil {
					return err
				}
			}
			if f.Changed("skills") {
				if after.SkillIDs, err = parseIDs(updSkills); err != nil {
					return err
				}
			}

			patch := api.DiffProject(*before, after)
			if patch.Empty() {
				c.printf("Nothing to update\n")
				return nil
			}
			if _, err := c.env.API.Projects.Patch(cmd.Context(), id, patch); err != nil {
				return err
			}
			c.printf("Project updated successfully\n")
			return nil
		},
	}
	bindProject(update, &upd, &updEmps, &updSkills)

	cmd.AddCommand(list, byEmployee, create, update, c.deleteCmd("project", func(cmd *cobra.Command, id int64) error {
		return c.env.API.Projects.Delete(cmd.Context(), id)
	}))
	return cmd
}

func bindProject(cmd *cobra.Command, p *api.ProjectInput, employees, skills *[]string) {
	f := cmd.Flags()
	f.StringVar(&p.Name, "name", "", "project name")
	f.StringVar(&p.Description, "description", "", "description")
	f.StringSliceVar(employees, "employees", nil, "assigned employee ids")
	f.StringSliceVar(skills, "skills", nil, "required skill ids")
}

func employeeNames(list []api.Employee) string {
	names := make([]string, 0, len(list))
	for _, e := range list {
		names = append(names, e.Name)
	}
	return strings.Join(names, ", ")
}

func skillNames(list []api.Skill) string {
	names := make([]string, 0, len(list))
	for _, s := range list {
		names = append(names, s.Name)
	}
	return strings.Join(names, ", ")
}

func (c *Console) skillsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "skills",
		Short:       "Manage skills",
		Annotations: route("/skills"),
	}

	var pf pageFlags
	list := &cobra.Command{
		Use:   "list",
		Short: "List skills",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				items []api.Skill
				total int
			)
			if pf.all {
				all, err := c.env.API.Skills.All(cmd.Context())
				if err != nil {
					return err
				}
				items, total = all, len(all)
			} else {
				page, err := c.env.API.Skills.List(cmd.Context(), pf.request())
				if err != nil {
					return err
				}
				items, total = page.Content, page.TotalElements
			}
			for _, s := range items {
				c.printf("%d\t%s\n", s.ID, s.Name)
			}
			c.footer(total, len(items))
			return nil
		},
	}
	pf.bind(list)

	var name string
	create := &cobra.Command{
		Use:   "create",
		Short: "Add a skill",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.env.API.Skills.Create(cmd.Context(), api.Skill{Name: name})
			if err != nil {
				return err
			}
			c.printf("Skill %d created\n", s.ID)
			return nil
		},
	}
	create.Flags().StringVar(&name, "name", "", "skill name")

	var newName string
	update := &cobra.Command{
		Use:   "update ID",
		Short: "Rename a skill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := c.env.API.Skills.Update(cmd.Context(), id, api.Skill{ID: id, Name: newName}); err != nil {
				return err
			}
			c.printf("Skill updated successfully\n")
			return nil
		},
	}
	update.Flags().StringVar(&newName, "name", "", "new skill name")

	cmd.AddCommand(list, create, update, c.deleteCmd("skill", func(cmd *cobra.Command, id int64) error {
		return c.env.API.Skills.Delete(cmd.Context(), id)
	}))
	return cmd
}

// deleteCmd 删除命令，--yes 跳过确认
func (c *Console) deleteCmd(kind string, del func(cmd *cobra.Command, id int64) error) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a " + kind,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if !yes {
				return errors.BadRequest("deleting %s %d cannot be undone, pass --yes to confirm", kind, id)
			}
			if err := del(cmd, id); err != nil {
				return err
			}
			c.printf("Deleted %s %d\n", kind, id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the deletion")
	return cmd
}
