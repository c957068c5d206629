package main

import (
	"github.com/andyle182810/ghclient/github"
	"github.com/spf13/cobra"
)

func newLabelsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "labels",
		Short: "Manage repository labels",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "create OWNER/REPO NAME COLOR",
			Short: "Create a label; COLOR is six hex digits without #",
			Args:  cobra.ExactArgs(3), //nolint:mnd
			RunE: func(cmd *cobra.Command, args []string) error {
				owner, repo, err := parseRepository(args[0])
				if err != nil {
					return err
				}

				return a.call(func(gh *github.GitHub) (any, error) {
					return gh.Issues.CreateLabel(cmd.Context(), owner, repo, args[1], args[2])
				})
			},
		},
		&cobra.Command{
			Use:   "edit OWNER/REPO LABEL NAME COLOR",
			Short: "Rename or recolor a label",
			Args:  cobra.ExactArgs(4), //nolint:mnd
			RunE: func(cmd *cobra.Command, args []string) error {
				owner, repo, err := parseRepository(args[0])
				if err != nil {
					return err
				}

				return a.call(func(gh *github.GitHub) (any, error) {
					return gh.Issues.EditLabel(cmd.Context(), owner, repo, args[1], args[2], args[3])
				})
			},
		},
		&cobra.Command{
			Use:   "get OWNER/REPO NAME",
			Short: "Show one label",
			Args:  cobra.ExactArgs(2), //nolint:mnd
			RunE: func(cmd *cobra.Command, args []string) error {
				owner, repo, err := parseRepository(args[0])
				if err != nil {
					return err
				}

				return a.call(func(gh *github.GitHub) (any, error) {
					return gh.Issues.GetLabel(cmd.Context(), owner, repo, args[1])
				})
			},
		},
		&cobra.Command{
			Use:   "list OWNER/REPO",
			Short: "List the labels of a repository",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				owner, repo, err := parseRepository(args[0])
				if err != nil {
					return err
				}

				return a.call(func(gh *github.GitHub) (any, error) {
					return gh.Issues.GetLabels(cmd.Context(), owner, repo)
				})
			},
		},
		&cobra.Command{
			Use:   "delete OWNER/REPO NAME",
			Short: "Delete a label",
			Args:  cobra.ExactArgs(2), //nolint:mnd
			RunE: func(cmd *cobra.Command, args []string) error {
				owner, repo, err := parseRepository(args[0])
				if err != nil {
					return err
				}

				return a.call(func(gh *github.GitHub) (any, error) {
					return "", gh.Issues.DeleteLabel(cmd.Context(), owner, repo, args[1])
				})
			},
		},
	)

	return cmd
}
