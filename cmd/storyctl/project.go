package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"Yui-Editor/studio/internal/models"
)

func newProjectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Create, list and remove projects",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "create NAME",
			Short: "Create a project (or look up an existing one) and print its id",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := a.client.CreateProject(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List project names",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				names, err := a.client.ListProjects(cmd.Context())
				if err != nil {
					return err
				}
				printLines(cmd.OutOrStdout(), names)
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove NAME",
			Short: "Remove a project by name",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ok, err := a.client.RemoveProject(cmd.Context(), args[0])
				return okOrFail(ok, err, "remove project")
			},
		},
		&cobra.Command{
			Use:   "remove-id PROJECT_ID",
			Short: "Remove a project by id",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ok, err := a.client.RemoveProjectByID(cmd.Context(), models.ProjectID(args[0]))
				return okOrFail(ok, err, "remove project")
			},
		},
		&cobra.Command{
			Use:   "meta PROJECT_ID",
			Short: "Print the engine name and version serving a project",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				meta, err := a.client.EngineMeta(cmd.Context(), models.ProjectID(args[0]))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", meta.Name, meta.Version)
				return nil
			},
		},
	)
	return cmd
}

func newStructCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "struct PROJECT_ID [CHAPTER]",
		Short: "Print the chapter and frame outline of a project as JSON",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			chapter := ""
			if len(args) == 2 {
				chapter = args[1]
			}
			project, err := a.client.GetStruct(cmd.Context(), models.ProjectID(args[0]), chapter)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), project)
		},
	}
}

func newCommitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "commit PROJECT_ID",
		Short: "Ask the backend to flush pending engine changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := a.client.Commit(cmd.Context(), models.ProjectID(args[0]))
			return okOrFail(ok, err, "commit")
		},
	}
}
