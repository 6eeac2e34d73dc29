package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"Yui-Editor/studio/internal/models"
)

func newChapterCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chapter",
		Short: "Manage the chapters of a project",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list PROJECT_ID",
			Short: "List chapters in authoring order",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				names, err := a.client.ListChapters(cmd.Context(), models.ProjectID(args[0]))
				if err != nil {
					return err
				}
				printLines(cmd.OutOrStdout(), names)
				return nil
			},
		},
		&cobra.Command{
			Use:   "add PROJECT_ID NAME",
			Short: "Append a chapter",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				name, err := a.client.AddChapter(cmd.Context(), models.ProjectID(args[0]), args[1])
				if err != nil {
					return err
				}
				if name == "" {
					return fmt.Errorf("add chapter: backend did not accept the request")
				}
				fmt.Fprintln(cmd.OutOrStdout(), name)
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove PROJECT_ID NAME",
			Short: "Remove a chapter and its frames",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				ok, err := a.client.RemoveChapter(cmd.Context(), models.ProjectID(args[0]), args[1])
				return okOrFail(ok, err, "remove chapter")
			},
		},
	)
	return cmd
}
