package console

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kochabx/workforce/api"
	"github.com/kochabx/workforce/auth/guard"
	"github.com/kochabx/workforce/errors"
)

func (c *Console) adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "admin",
		Short:       "Manage accounts and roles (ADMIN only)",
		Annotations: route("/admin"),
	}

	roles := &cobra.Command{
		Use:   "roles",
		Short: "List the assignable roles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := c.env.API.Admin.Roles(cmd.Context())
			if err != nil {
				return err
			}
			for _, r := range list {
				c.printf("%d\t%s\n", r.ID, r.Name)
			}
			return nil
		},
	}

	users := &cobra.Command{
		Use:   "users",
		Short: "List accounts and their roles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := c.env.API.Admin.Users(cmd.Context())
			if err != nil {
				return err
			}
			members := api.Members(list)
			lone := guard.AdminCount(members) == 1

			tw := c.table()
			fmt.Fprintln(tw, "ID\tUSERNAME\tROLES\t")
			for _, m := range members {
				mark := ""
				if lone && m.IsAdmin() {
					mark = "last admin"
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", m.ID, m.Username, strings.Join(m.Roles, ", "), mark)
			}
			return tw.Flush()
		},
	}

	var req api.AssignRoleRequest
	assign := &cobra.Command{
		Use:   "assign-role",
		Short: "Set the roles of an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !guard.Enabled(c.env.Session.Session(), guard.ActionAssignRole) {
				return errors.Forbidden(MsgAccessDenied)
			}
			if err := c.env.API.Admin.AssignRole(cmd.Context(), req); err != nil {
				return err
			}
			c.env.RecordAdmin(guard.ActionAssignRole.Name, map[string]string{
				"username": req.Username,
				"roles":    strings.Join(req.Roles, ","),
			})
			c.printf("Roles of %s set to %s\n", req.Username, strings.Join(req.Roles, ", "))
			return nil
		},
	}
	assign.Flags().StringVarP(&req.Username, "username", "u", "", "account to change")
	assign.Flags().StringSliceVarP(&req.Roles, "role", "r", nil, "role to assign, repeatable")

	var yes bool
	del := &cobra.Command{
		Use:   "delete-user ID",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !guard.Enabled(c.env.Session.Session(), guard.ActionDeleteUser) {
				return errors.Forbidden(MsgAccessDenied)
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if !yes {
				return errors.BadRequest("deleting user %d cannot be undone, pass --yes to confirm", id)
			}
			if err := c.env.API.Admin.DeleteUser(cmd.Context(), id); err != nil {
				return err
			}
			c.env.RecordAdmin(guard.ActionDeleteUser.Name, map[string]string{"userId": args[0]})
			c.printf("User deleted successfully\n")
			return nil
		},
	}
	del.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the deletion")

	cmd.AddCommand(roles, users, assign, del)
	return cmd
}
