package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"Yui-Editor/studio/internal/models"
)

func newFrameCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "frame",
		Short: "Inspect and edit frames",
	}

	var speaker string
	setDialog := &cobra.Command{
		Use:   "set-dialog PROJECT_ID FID TEXT",
		Short: "Replace the dialog line of a frame",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := models.ProjectID(args[0])
			fid, err := models.ParseFrameID(args[1])
			if err != nil {
				return err
			}

			detail, err := a.client.FetchFrame(cmd.Context(), fid, id)
			if err != nil {
				return err
			}
			detail.Dialog = args[2]
			if cmd.Flags().Changed("character") {
				detail.DialogCharacter = speaker
			}

			ok, err := a.client.ModifyFrame(cmd.Context(), fid, id, detail)
			return okOrFail(ok, err, "modify frame")
		},
	}
	setDialog.Flags().StringVarP(&speaker, "character", "c", "", "name of the speaking character")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list PROJECT_ID CHAPTER",
			Short: "List the frames of a chapter",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				entries, err := a.client.ListFramesInChapter(cmd.Context(), models.ProjectID(args[0]), args[1])
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME")
				for _, e := range entries {
					fmt.Fprintf(tw, "%d\t%s\n", e.ID, e.FrameName)
				}
				return tw.Flush()
			},
		},
		&cobra.Command{
			Use:   "get PROJECT_ID FID",
			Short: "Print a frame body as JSON",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				fid, err := models.ParseFrameID(args[1])
				if err != nil {
					return err
				}
				detail, err := a.client.FetchFrame(cmd.Context(), fid, models.ProjectID(args[0]))
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), detail)
			},
		},
		setDialog,
		&cobra.Command{
			Use:   "append PROJECT_ID CHAPTER NAME",
			Short: "Append a frame to a chapter",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				chapter, err := a.client.AppendFrame(cmd.Context(), models.ProjectID(args[0]), args[1], args[2])
				if err != nil {
					return err
				}
				if chapter == "" {
					return fmt.Errorf("append frame: backend did not accept the request")
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove PROJECT_ID FID",
			Short: "Remove a frame",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				fid, err := models.ParseFrameID(args[1])
				if err != nil {
					return err
				}
				ok, err := a.client.RemoveFrame(cmd.Context(), models.ProjectID(args[0]), fid)
				return okOrFail(ok, err, "remove frame")
			},
		},
	)
	return cmd
}
