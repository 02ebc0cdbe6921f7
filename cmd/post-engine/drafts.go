package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/post-engine/internal/drafts"
	"github.com/pdiddy/post-engine/pkg/types"
)

var draftsCmd = &cobra.Command{
	Use:   "drafts",
	Short: "List, edit, delete and export stored posts",
}

var draftsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored posts, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		return withStore(cmd, func(ctx context.Context, s *drafts.Store) error {
			posts, err := s.List(ctx)
			if err != nil {
				return err
			}
			return printDrafts(cmd.OutOrStdout(), posts, asJSON)
		})
	},
}

var draftsEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Replace the text of a draft that has not been posted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		content, _ := cmd.Flags().GetString("content")
		return withStore(cmd, func(ctx context.Context, s *drafts.Store) error {
			d, err := s.UpdateContent(ctx, id, content)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated draft %d\n", d.ID)
			return nil
		})
	},
}

var draftsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withStore(cmd, func(ctx context.Context, s *drafts.Store) error {
			if err := s.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted post %d\n", id)
			return nil
		})
	},
}

var draftsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every stored post to YAML or JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")
		if format != "yaml" && format != "json" {
			return fmt.Errorf("unknown export format %q: use yaml or json", format)
		}

		return withStore(cmd, func(ctx context.Context, s *drafts.Store) error {
			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}
			if format == "json" {
				return s.ExportJSON(ctx, w)
			}
			return s.ExportYAML(ctx, w)
		})
	},
}

func init() {
	draftsListCmd.Flags().Bool("json", false, "output as JSON")

	draftsEditCmd.Flags().String("content", "", "new post text")
	draftsEditCmd.MarkFlagRequired("content")

	draftsExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	draftsExportCmd.Flags().String("output", "", "file to write (default stdout)")

	draftsCmd.AddCommand(draftsListCmd, draftsEditCmd, draftsDeleteCmd, draftsExportCmd)
	rootCmd.AddCommand(draftsCmd)
}

// withStore opens the configured store for the duration of fn.
func withStore(cmd *cobra.Command, fn func(context.Context, *drafts.Store) error) error {
	s, err := drafts.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()
	return fn(ctx, s)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid post id %q", s)
	}
	return id, nil
}

func printDrafts(w io.Writer, posts []types.Draft, asJSON bool) error {
	if asJSON {
		if posts == nil {
			posts = []types.Draft{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(posts)
	}
	if len(posts) == 0 {
		fmt.Fprintln(w, "no posts")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tCREATED\tTOPIC\tCONTENT")
	for _, d := range posts {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			d.ID, d.Status, d.CreatedAt.Local().Format(time.DateTime), d.Topic, d.Content)
	}
	return tw.Flush()
}
