package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vibetube/vibetube/internal/backend"
	"github.com/vibetube/vibetube/internal/view"
)

func newListCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list [query]",
		Short: "List videos, optionally filtered by a search query",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.settings()
			if err != nil {
				return err
			}
			query := ""
			if len(args) == 1 {
				query = args[0]
			}

			feed := view.NewFeed(newClient(cfg))
			if err := feed.Refresh(cmd.Context(), query); err != nil {
				return fmt.Errorf("failed to fetch videos: %w", err)
			}
			printFeed(cmd.OutOrStdout(), feed.State().Videos)
			return nil
		},
	}
}

func printFeed(w io.Writer, videos []backend.Video) {
	if len(videos) == 0 {
		fmt.Fprintln(w, "No videos yet. Upload one to get started.")
		return
	}
	for _, v := range videos {
		title := v.Title
		if title == "" {
			title = v.Filename
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", v.ID, title, view.ViewsLabel(v.Views))
	}
}

func newWatchCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <id>",
		Short: "Show one video and its stream URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.settings()
			if err != nil {
				return err
			}
			client := newClient(cfg)

			state := view.NewWatch(client).Load(cmd.Context(), args[0])
			if state.NotFound() {
				if state.Unavailable {
					return fmt.Errorf("video %s could not be loaded", args[0])
				}
				return errors.New("not found")
			}

			out := cmd.OutOrStdout()
			v := state.Video
			fmt.Fprintln(out, v.Title)
			if v.Description != "" {
				fmt.Fprintln(out, v.Description)
			}
			fmt.Fprintln(out, view.ViewsLabel(v.Views))
			fmt.Fprintf(out, "Tags: %s\n", view.TagsLabel(v.Tags))
			fmt.Fprintf(out, "Stream: %s\n", client.StreamURL(v.Filename))
			return nil
		},
	}
}

func newUploadCmd(flags *globalFlags) *cobra.Command {
	var title, description, tags string

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a video file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.settings()
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer f.Close()

			info, err := f.Stat()
			if err != nil {
				return fmt.Errorf("stat %s: %w", args[0], err)
			}

			return runUpload(cmd.Context(), cmd.OutOrStdout(), newClient(cfg), view.Form{
				File: &view.File{
					Name:        filepath.Base(args[0]),
					Size:        info.Size(),
					ContentType: mime.TypeByExtension(filepath.Ext(args[0])),
					Body:        f,
				},
				Title:       title,
				Description: description,
				Tags:        tags,
			})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Video title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Video description")
	cmd.Flags().StringVar(&tags, "tags", "", "Comma separated tags")

	return cmd
}

func runUpload(ctx context.Context, out io.Writer, client *backend.Client, form view.Form) error {
	if form.File != nil {
		fmt.Fprintf(out, "Uploading... %s (%s)\n", form.File.Name, humanize.Bytes(uint64(max(form.File.Size, 0))))
	}

	feed := view.NewFeed(client)
	result := view.NewUploader(client, feed).Submit(ctx, form)
	fmt.Fprintln(out, result.Message)
	if result.Phase != view.Succeeded {
		return errors.New("upload did not complete")
	}

	printFeed(out, feed.State().Videos)
	return nil
}
