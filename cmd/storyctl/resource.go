package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"Yui-Editor/studio/internal/interfaces"
	"Yui-Editor/studio/internal/models"
)

func newResourceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "res",
		Aliases: []string{"resource"},
		Short:   "Manage backgrounds, music and character sprites",
	}

	var filter string
	list := &cobra.Command{
		Use:   "list PROJECT_ID TYPE",
		Short: "List resources of one type (background, music, character)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rtype, err := models.ParseResourceType(args[1])
			if err != nil {
				return err
			}
			names, err := a.client.FilterResources(cmd.Context(), models.ProjectID(args[0]), rtype, filter)
			if err != nil {
				return err
			}
			printLines(cmd.OutOrStdout(), names)
			return nil
		},
	}
	list.Flags().StringVarP(&filter, "filter", "f", "", "only names containing this text")

	cmd.AddCommand(
		list,
		&cobra.Command{
			Use:   "upload PROJECT_ID TYPE FILE...",
			Short: "Upload one or more files",
			Args:  cobra.MinimumNArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				rtype, err := models.ParseResourceType(args[1])
				if err != nil {
					return err
				}
				return a.upload(cmd, models.ProjectID(args[0]), rtype, args[2:])
			},
		},
		&cobra.Command{
			Use:   "remove PROJECT_ID TYPE NAME",
			Short: "Remove a resource",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				rtype, err := models.ParseResourceType(args[1])
				if err != nil {
					return err
				}
				ok, err := a.client.RemoveResource(cmd.Context(), models.ProjectID(args[0]), rtype, args[2])
				return okOrFail(ok, err, "remove resource")
			},
		},
		&cobra.Command{
			Use:   "rename PROJECT_ID TYPE OLD NEW",
			Short: "Rename a resource",
			Args:  cobra.ExactArgs(4),
			RunE: func(cmd *cobra.Command, args []string) error {
				rtype, err := models.ParseResourceType(args[1])
				if err != nil {
					return err
				}
				ok, err := a.client.RenameResource(cmd.Context(), models.ProjectID(args[0]), rtype, args[2], args[3])
				return okOrFail(ok, err, "rename resource")
			},
		},
	)
	return cmd
}

func (a *app) upload(cmd *cobra.Command, id models.ProjectID, rtype models.ResourceType, paths []string) error {
	files := make([]interfaces.Upload, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", p, err)
		}
		defer f.Close()
		files = append(files, interfaces.Upload{Filename: filepath.Base(p), Body: f})
	}

	var (
		ok  bool
		err error
	)
	if len(files) == 1 {
		ok, err = a.client.UploadResource(cmd.Context(), id, rtype, files[0].Filename, files[0].Body)
	} else {
		ok, err = a.client.UploadResources(cmd.Context(), id, rtype, files)
	}
	if err := okOrFail(ok, err, "upload"); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "uploaded %d file(s)\n", len(files))
	return nil
}
