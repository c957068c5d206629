package main

import (
	"github.com/andyle182810/ghclient/github"
	"github.com/spf13/cobra"
)

func newIssuesCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issues",
		Short: "Create, edit and list issues, comments and labels",
	}

	cmd.AddCommand(
		newIssueCreateCommand(a),
		newIssueEditCommand(a),
		newIssueGetCommand(a),
		newIssueListCommand(a),
		newIssueListRepoCommand(a),
		newCommentsCommand(a),
		newLabelsCommand(a),
	)

	return cmd
}

func parseNumber(arg string) (int, error) {
	id, err := parseID(arg)
	if err != nil {
		return 0, err
	}

	return int(id), nil
}

func newIssueCreateCommand(a *app) *cobra.Command {
	var (
		title, body         string
		assignee, milestone string
		labels              []string
	)

	cmd := &cobra.Command{
		Use:   "create OWNER/REPO",
		Short: "Open a new issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, repo, err := parseRepository(args[0])
			if err != nil {
				return err
			}

			opts := &github.IssueOptions{Assignee: assignee, Milestone: milestone, Labels: nil}
			if cmd.Flags().Changed("label") {
				opts.Labels = labels
			}

			gh, err := a.newGitHub()
			if err != nil {
				return err
			}

			issue, err := gh.Issues.Create(cmd.Context(), owner, repo, title, body, opts)
			if err != nil {
				return err
			}

			return a.print(issue)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "issue title")
	cmd.Flags().StringVar(&body, "body", "", "issue body")
	cmd.Flags().StringVar(&assignee, "assignee", "", "login to assign")
	cmd.Flags().StringVar(&milestone, "milestone", "", "milestone number")
	cmd.Flags().StringSliceVar(&labels, "label", nil, "label to apply, repeatable")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newIssueEditCommand(a *app) *cobra.Command {
	var (
		edit        github.IssueEdit
		labels      []string
		clearLabels bool
	)

	cmd := &cobra.Command{
		Use:   "edit OWNER/REPO NUMBER",
		Short: "Change an issue; only the given fields are sent",
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

			switch {
			case clearLabels:
				edit.Labels = []string{}
			case cmd.Flags().Changed("label"):
				edit.Labels = labels
			}

			gh, err := a.newGitHub()
			if err != nil {
				return err
			}

			issue, err := gh.Issues.Edit(cmd.Context(), owner, repo, number, &edit)
			if err != nil {
				return err
			}

			return a.print(issue)
		},
	}

	cmd.Flags().StringVar(&edit.Title, "title", "", "new title")
	cmd.Flags().StringVar(&edit.Body, "body", "", "new body")
	cmd.Flags().StringVar(&edit.State, "state", "", "open or closed")
	cmd.Flags().StringVar(&edit.Assignee, "assignee", "", "login to assign")
	cmd.Flags().StringVar(&edit.Milestone, "milestone", "", "milestone number")
	cmd.Flags().StringSliceVar(&labels, "label", nil, "replace labels, repeatable")
	cmd.Flags().BoolVar(&clearLabels, "clear-labels", false, "remove every label")

	return cmd
}

func newIssueGetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get OWNER/REPO NUMBER",
		Short: "Show one issue",
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

			gh, err := a.newGitHub()
			if err != nil {
				return err
			}

			issue, err := gh.Issues.Get(cmd.Context(), owner, repo, number)
			if err != nil {
				return err
			}

			return a.print(issue)
		},
	}
}

type issueFilterFlags struct {
	state, sort, direction, since string
	labels                        []string
	page, perPage                 int
}

func (f *issueFilterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.state, "state", "", "open, closed or all")
	cmd.Flags().StringVar(&f.sort, "sort", "", "created, updated or comments")
	cmd.Flags().StringVar(&f.direction, "direction", "", "asc or desc")
	cmd.Flags().StringVar(&f.since, "since", "", "only issues updated at or after this RFC 3339 time")
	cmd.Flags().StringSliceVar(&f.labels, "labels", nil, "comma separated label names")
	cmd.Flags().IntVar(&f.page, "page", 0, "page number")
	cmd.Flags().IntVar(&f.perPage, "per-page", 0, "results per page, at most 100")
}

func newIssueListCommand(a *app) *cobra.Command {
	var (
		filters issueFilterFlags
		filter  string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List issues assigned to the authenticated user across repositories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			since, err := parseTime(filters.since)
			if err != nil {
				return err
			}

			gh, err := a.newGitHub()
			if err != nil {
				return err
			}

			issues, err := gh.Issues.GetList(cmd.Context(), &github.IssueListOptions{
				Filter:      filter,
				State:       filters.state,
				Labels:      filters.labels,
				Sort:        filters.sort,
				Direction:   filters.direction,
				Since:       since,
				ListOptions: github.ListOptions{Page: filters.page, PerPage: filters.perPage},
			})
			if err != nil {
				return err
			}

			return a.print(issues)
		},
	}

	filters.register(cmd)
	cmd.Flags().StringVar(&filter, "filter", "", "assigned, created, mentioned, subscribed or all")

	return cmd
}

func newIssueListRepoCommand(a *app) *cobra.Command {
	var (
		filters                        issueFilterFlags
		milestone, assignee, mentioned string
	)

	cmd := &cobra.Command{
		Use:   "list-repo OWNER/REPO",
		Short: "List the issues of one repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, repo, err := parseRepository(args[0])
			if err != nil {
				return err
			}

			since, err := parseTime(filters.since)
			if err != nil {
				return err
			}

			gh, err := a.newGitHub()
			if err != nil {
				return err
			}

			issues, err := gh.Issues.GetListByRepository(cmd.Context(), owner, repo, &github.RepositoryIssueListOptions{
				Milestone:   milestone,
				State:       filters.state,
				Assignee:    assignee,
				Mentioned:   mentioned,
				Labels:      filters.labels,
				Sort:        filters.sort,
				Direction:   filters.direction,
				Since:       since,
				ListOptions: github.ListOptions{Page: filters.page, PerPage: filters.perPage},
			})
			if err != nil {
				return err
			}

			return a.print(issues)
		},
	}

	filters.register(cmd)
	cmd.Flags().StringVar(&milestone, "milestone", "", `milestone number, "*" or "none"`)
	cmd.Flags().StringVar(&assignee, "assignee", "", `login, "*" or "none"`)
	cmd.Flags().StringVar(&mentioned, "mentioned", "", "login mentioned in the issue")

	return cmd
}
