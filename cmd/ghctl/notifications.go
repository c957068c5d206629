package main

import (
	"github.com/andyle182810/ghclient/github"
	"github.com/spf13/cobra"
)

func newNotificationsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "List, read and watch notifications",
	}

	cmd.AddCommand(
		newNotificationListCommand(a),
		newMarkReadCommand(a),
		newThreadCommand(a),
		newWatchCommand(a),
		newHistoryCommand(a),
	)

	return cmd
}

func newNotificationListCommand(a *app) *cobra.Command {
	var (
		repository    string
		all           bool
		participating bool
		since, before string
		page          github.ListOptions
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notifications, by default all=1&participating=1",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var opts *github.NotificationListOptions

			flags := cmd.Flags()
			if flags.Changed("all") || flags.Changed("participating") || since != "" || before != "" ||
				page.Page > 0 || page.PerPage > 0 {
				sinceTime, err := parseTime(since)
				if err != nil {
					return err
				}

				beforeTime, err := parseTime(before)
				if err != nil {
					return err
				}

				opts = &github.NotificationListOptions{
					All:           all,
					Participating: participating,
					Since:         sinceTime,
					Before:        beforeTime,
					ListOptions:   page,
				}
			}

			return a.call(func(gh *github.GitHub) (any, error) {
				if repository == "" {
					return gh.Notifications.GetList(cmd.Context(), opts)
				}

				owner, repo, err := parseRepository(repository)
				if err != nil {
					return nil, err
				}

				return gh.Notifications.GetListRepository(cmd.Context(), owner, repo, opts)
			})
		},
	}

	cmd.Flags().StringVar(&repository, "repo", "", "only notifications for OWNER/REPO")
	cmd.Flags().BoolVar(&all, "all", true, "include notifications already marked read")
	cmd.Flags().BoolVar(&participating, "participating", true, "only threads the user participates in")
	cmd.Flags().StringVar(&since, "since", "", "only notifications updated after this RFC 3339 time")
	cmd.Flags().StringVar(&before, "before", "", "only notifications updated before this RFC 3339 time")
	cmd.Flags().IntVar(&page.Page, "page", 0, "page number")
	cmd.Flags().IntVar(&page.PerPage, "per-page", 0, "results per page, at most 100")

	return cmd
}

func newMarkReadCommand(a *app) *cobra.Command {
	var (
		repository   string
		unread, read bool
		lastReadAt   string
	)

	cmd := &cobra.Command{
		Use:   "mark-read",
		Short: "Mark every notification, or those of one repository, as read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var opts *github.MarkReadOptions

			flags := cmd.Flags()
			if flags.Changed("unread") || flags.Changed("read") || lastReadAt != "" {
				at, err := parseTime(lastReadAt)
				if err != nil {
					return err
				}

				opts = &github.MarkReadOptions{Unread: unread, Read: read, LastReadAt: at}
			}

			return a.call(func(gh *github.GitHub) (any, error) {
				if repository == "" {
					return gh.Notifications.MarkRead(cmd.Context(), opts)
				}

				owner, repo, err := parseRepository(repository)
				if err != nil {
					return nil, err
				}

				return gh.Notifications.MarkReadRepository(cmd.Context(), owner, repo, opts)
			})
		},
	}

	cmd.Flags().StringVar(&repository, "repo", "", "only notifications for OWNER/REPO")
	cmd.Flags().BoolVar(&unread, "unread", true, "value sent as unread")
	cmd.Flags().BoolVar(&read, "read", true, "value sent as read")
	cmd.Flags().StringVar(&lastReadAt, "last-read-at", "", "mark notifications updated up to this RFC 3339 time")

	return cmd
}

func newThreadCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "thread",
		Short: "Work with a single notification thread",
	}

	var unread, read bool

	markRead := &cobra.Command{
		Use:   "mark-read ID",
		Short: "Mark one thread as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var opts *github.ThreadReadOptions
			if cmd.Flags().Changed("unread") || cmd.Flags().Changed("read") {
				opts = &github.ThreadReadOptions{Unread: unread, Read: read}
			}

			return a.call(func(gh *github.GitHub) (any, error) {
				return gh.Notifications.MarkReadThread(cmd.Context(), id, opts)
			})
		},
	}

	markRead.Flags().BoolVar(&unread, "unread", true, "value sent as unread")
	markRead.Flags().BoolVar(&read, "read", true, "value sent as read")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "view ID",
			Short: "Show one thread",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}

				return a.call(func(gh *github.GitHub) (any, error) {
					return gh.Notifications.ViewThread(cmd.Context(), id)
				})
			},
		},
		markRead,
		newSubscriptionCommand(a),
	)

	return cmd
}

func newSubscriptionCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subscription",
		Short: "Show, change or delete a thread subscription",
	}

	var subscribed, ignored bool

	set := &cobra.Command{
		Use:   "set ID",
		Short: "Subscribe to or ignore a thread",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return a.call(func(gh *github.GitHub) (any, error) {
				return gh.Notifications.SetThreadSubscription(cmd.Context(), id, subscribed, ignored)
			})
		},
	}

	set.Flags().BoolVar(&subscribed, "subscribed", true, "receive notifications for the thread")
	set.Flags().BoolVar(&ignored, "ignored", false, "block all notifications for the thread")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get ID",
			Short: "Show the subscription of a thread",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}

				return a.call(func(gh *github.GitHub) (any, error) {
					return gh.Notifications.GetThreadSubscription(cmd.Context(), id)
				})
			},
		},
		set,
		&cobra.Command{
			Use:   "delete ID",
			Short: "Mute a thread until the next mention",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}

				return a.call(func(gh *github.GitHub) (any, error) {
					return gh.Notifications.DeleteThreadSubscription(cmd.Context(), id)
				})
			},
		},
	)

	return cmd
}
