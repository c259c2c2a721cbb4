package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jdholdren/spdb/internal/spdb"
)

func (a *app) tagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List tags and how many bookmarks carry each",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeDB, err := a.repo()
			if err != nil {
				return err
			}
			defer closeDB()

			tags, err := repo.Tags(cmd.Context())
			if err != nil {
				return err
			}
			if len(tags) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render("no tags yet"))
				return nil
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%d tags", len(tags))))
			for _, t := range tags {
				fmt.Fprintf(out, "%s  %s\n", countStyle.Render(fmt.Sprint(t.Bookmarks)), tagStyle.Render(t.Name))
			}
			return nil
		},
	}
}

func (a *app) createTagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create-tags <name>...",
		Short: "Create tags ahead of applying them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := spdb.NormalizeTagNames(args...)
			if err != nil {
				return err
			}

			repo, closeDB, err := a.repo()
			if err != nil {
				return err
			}
			defer closeDB()

			if err := repo.CreateTags(cmd.Context(), names...); err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", tagStyle.Render(n))
			}
			return nil
		},
	}
}

func (a *app) tagCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tag <bookmark-id> <tag>",
		Short: "Apply a tag to a bookmark",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeDB, err := a.repo()
			if err != nil {
				return err
			}
			defer closeDB()

			if err := repo.ApplyTag(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			return printBookmark(cmd, repo, args[0])
		},
	}
}

func (a *app) untagCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "untag <bookmark-id> <tag>",
		Short: "Remove a tag from a bookmark",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeDB, err := a.repo()
			if err != nil {
				return err
			}
			defer closeDB()

			if err := repo.RemoveTag(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			return printBookmark(cmd, repo, args[0])
		},
	}
}
