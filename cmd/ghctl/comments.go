package main

import (
	"github.com/andyle182810/ghclient/github"
	"github.com/spf13/cobra"
)

func newCommentsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comments",
		Short: "Manage issue comments",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "create OWNER/REPO NUMBER BODY",
			Short: "Comment on an issue",
			Args:  cobra.ExactArgs(3), //nolint:mnd
			RunE: func(cmd *cobra.Command, args []string) error {
				owner, repo, err := parseRepository(args[0])
				if err != nil {
					return err
				}

				number, err := parseNumber(args[1])
				if err != nil {
					return err
				}

				return a.call(func(gh *github.GitHub) (any, error) {
					return gh.Issues.CreateComment(cmd.Context(), owner, repo, number, args[2])
				})
			},
		},
		&cobra.Command{
			Use:   "edit OWNER/REPO COMMENT_ID BODY",
			Short: "Replace the body of a comment",
			Args:  cobra.ExactArgs(3), //nolint:mnd
			RunE: func(cmd *cobra.Command, args []string) error {
				owner, repo, err := parseRepository(args[0])
				if err != nil {
					return err
				}

				id, err := parseID(args[1])
				if err != nil {
					return err
				}

				return a.call(func(gh *github.GitHub) (any, error) {
					return gh.Issues.EditComment(cmd.Context(), owner, repo, id, args[2])
				})
			},
		},
		&cobra.Command{
			Use:   "get OWNER/REPO COMMENT_ID",
			Short: "Show one comment",
			Args:  cobra.ExactArgs(2), //nolint:mnd
			RunE: func(cmd *cobra.Command, args []string) error {
				owner, repo, err := parseRepository(args[0])
				if err != nil {
					return err
				}

				id, err := parseID(args[1])
				if err != nil {
					return err
				}

				return a.call(func(gh *github.GitHub) (any, error) {
					return gh.Issues.GetComment(cmd.Context(), owner, repo, id)
				})
			},
		},
		newCommentListCommand(a),
		&cobra.Command{
			Use:   "delete OWNER/REPO COMMENT_ID",
			Short: "Delete a comment",
			Args:  cobra.ExactArgs(2), //nolint:mnd
			RunE: func(cmd *cobra.Command, args []string) error {
				owner, repo, err := parseRepository(args[0])
				if err != nil {
					return err
				}

				id, err := parseID(args[1])
				if err != nil {
					return err
				}

				return a.call(func(gh *github.GitHub) (any, error) {
					return "", gh.Issues.DeleteComment(cmd.Context(), owner, repo, id)
				})
			},
		},
	)

	return cmd
}

func newCommentListCommand(a *app) *cobra.Command {
	var page github.ListOptions

	cmd := &cobra.Command{
		Use:   "list OWNER/REPO NUMBER",
		Short: "List the comments on an issue",
		Args:  cobra.ExactArgs(2), //nolint:mnd
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, repo, err := parseRepository(args[0])
			if err != nil {
				return err
			}

			number, err := parseNumber(args[1])
			if err != nil {
				return err
			}

			return a.call(func(gh *github.GitHub) (any, error) {
				return gh.Issues.GetComments(cmd.Context(), owner, repo, number, &page)
			})
		},
	}

	cmd.Flags().IntVar(&page.Page, "page", 0, "page number")
	cmd.Flags().IntVar(&page.PerPage, "per-page", 0, "results per page, at most 100")

	return cmd
}
