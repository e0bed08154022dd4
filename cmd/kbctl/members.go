package main

import (
	"github.com/spf13/cobra"

	models "knowledgebase/internal/domain/models/kb"
)

var membersCmd = &cobra.Command{
	Use:   "members",
	Short: "Manage workspace memberships",
}

var (
	grantWorkspace string
	grantUser      string
	grantRole      string
)

var membersGrantCmd = &cobra.Command{
	Use:   "grant",
	Short: "Give a user a role in a workspace",
	Long:  `grant creates or changes a membership. Roles: viewer, editor, admin, owner.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		member, err := app.authorizer.Grant(cmd.Context(), grantWorkspace, grantUser, models.Role(grantRole))
		if err != nil {
			return err
		}
		return printJSON(member)
	},
}

func init() {
	membersGrantCmd.Flags().StringVar(&grantWorkspace, "workspace", "", "workspace ID")
	membersGrantCmd.Flags().StringVar(&grantUser, "user", "", "user ID")
	membersGrantCmd.Flags().StringVar(&grantRole, "role", string(models.RoleEditor), "role to grant")
	_ = membersGrantCmd.MarkFlagRequired("workspace")
	_ = membersGrantCmd.MarkFlagRequired("user")

	membersCmd.AddCommand(membersGrantCmd)
}
