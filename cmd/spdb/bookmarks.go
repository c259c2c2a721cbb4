package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jdholdren/spdb/internal/reddit"
	"github.com/jdholdren/spdb/internal/secrets"
	"github.com/jdholdren/spdb/internal/spdb"
)

func (a *app) listCmd() *cobra.Command {
	var args spdb.BookmarksArgs

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bookmarks, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, closeDB, err := a.repo()
			if err != nil {
				return err
			}
			defer closeDB()

			bms, err := repo.Bookmarks(cmd.Context(), args)
			if err != nil {
				return err
			}
			if len(bms) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render("no bookmarks"))
				return nil
			}
			for _, bm := range bms {
				writeBookmark(cmd.OutOrStdout(), bm)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&args.Tag, "tag", "", "only bookmarks with this tag")
	cmd.Flags().StringVar(&args.Subreddit, "subreddit", "", "only bookmarks from this subreddit")
	cmd.Flags().Uint64Var(&args.Limit, "limit", 20, "how many to show, 0 for all")
	cmd.Flags().Uint64Var(&args.Offset, "offset", 0, "how many to skip")
	return cmd
}

func printBookmark(cmd *cobra.Command, repo spdb.Repository, id string) error {
	bm, err := repo.Bookmark(cmd.Context(), id)
	if err != nil {
		return err
	}

	writeBookmark(cmd.OutOrStdout(), bm)
	return nil
}

func writeBookmark(w io.Writer, bm spdb.Bookmark) {
	fmt.Fprintf(w, "%s %s\n", headerStyle.Render(bm.ID), bm.Title)
	fmt.Fprintf(w, "  %s r/%s %s\n", dimStyle.Render(bm.DateCreatedString()), bm.Subreddit, dimStyle.Render(bm.URL))
	if tags := bm.TagsString(); tags != "" {
		fmt.Fprintf(w, "  %s\n", tagStyle.Render(tags))
	}
}

func (a *app) uncategorisedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "uncategorised",
		Short: "List subscribed subreddits that aren't in any multireddit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := secrets.LoadCredentials(a.secretsPath)
			if err != nil {
				return err
			}

			subs, err := reddit.New(cmd.Context(), reddit.Config{Credentials: creds}).Uncategorised(cmd.Context())
			if err != nil {
				return err
			}
			if len(subs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render("every subscription is in a multireddit"))
				return nil
			}
			for _, s := range subs {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
			return nil
		},
	}
}
