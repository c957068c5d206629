package github

import (
	"context"
	"net/http"
	"time"

	"github.com/andyle182810/ghclient/validator"
)

// NotificationListOptions filters notification listings. A nil *NotificationListOptions
// asks for all notifications the user participates in (all=1&participating=1).
type NotificationListOptions struct {
	All           bool
	Participating bool
	Since         *time.Time
	Before        *time.Time
	ListOptions
}

// MarkReadOptions is sent as {"unread","read"[,"last_read_at"]}. A nil
// *MarkReadOptions sends unread=true and read=true.
type MarkReadOptions struct {
	Unread     bool
	Read       bool
	LastReadAt *time.Time
}

// ThreadReadOptions is sent as {"unread","read"}. A nil value sends both true.
type ThreadReadOptions struct {
	Unread bool
	Read   bool
}

//nolint:tagliatelle
type markReadRequest struct {
	Unread     bool   `json:"unread"`
	Read       bool   `json:"read"`
	LastReadAt string `json:"last_read_at,omitempty"`
}

type subscriptionRequest struct {
	Subscribed bool `json:"subscribed"`
	Ignored    bool `json:"ignored"`
}

// Notifications wraps the activity notifications endpoints.
type Notifications struct {
	options   *Options
	transport Transport
	validator *validator.Validator
}

func NewNotifications(options *Options, transport Transport) *Notifications {
	return &Notifications{
		options:   options,
		transport: transport,
		validator: validator.New(),
	}
}

func (c *Notifications) Options() *Options {
	return c.options
}

func (c *Notifications) listPath(path string, opts *NotificationListOptions) (string, error) {
	if opts == nil {
		opts = &NotificationListOptions{ //nolint:exhaustruct
			All:           true,
			Participating: true,
		}
	}

	if err := c.validator.Validate(opts); err != nil {
		return "", err
	}

	var q query

	q.addFlag("all", opts.All)
	q.addFlag("participating", opts.Participating)
	q.addDate("since", opts.Since)
	q.addDate("before", opts.Before)
	q.addPage(&opts.ListOptions)

	return q.apply(path), nil
}

// GetList lists notifications for the authenticated user.
func (c *Notifications) GetList(ctx context.Context, opts *NotificationListOptions) (any, error) {
	path, err := c.listPath("/notifications", opts)
	if err != nil {
		return nil, err
	}

	resp, err := c.transport.Get(ctx, path)
	if err != nil {
		return nil, err
	}

	return processResponse(resp, http.StatusOK)
}

func (c *Notifications) GetListRepository(
	ctx context.Context,
	owner, repo string,
	opts *NotificationListOptions,
) (any, error) {
	if err := c.validator.Validate(repoParams{Owner: owner, Repo: repo}); err != nil {
		return nil, err
	}

	path, err := c.listPath(repoPath(owner, repo, "notifications"), opts)
	if err != nil {
		return nil, err
	}

	resp, err := c.transport.Get(ctx, path)
	if err != nil {
		return nil, err
	}

	return processResponse(resp, http.StatusOK)
}

func markReadBody(opts *MarkReadOptions) ([]byte, error) {
	req := markReadRequest{Unread: true, Read: true, LastReadAt: ""}

	if opts != nil {
		req.Unread = opts.Unread
		req.Read = opts.Read

		if opts.LastReadAt != nil {
			req.LastReadAt = FormatDate(*opts.LastReadAt)
		}
	}

	return encodeBody(req)
}

// MarkRead marks every notification as read. GitHub answers 205 with no body, which
// is returned as "".
func (c *Notifications) MarkRead(ctx context.Context, opts *MarkReadOptions) (any, error) {
	payload, err := markReadBody(opts)
	if err != nil {
		return nil, err
	}

	resp, err := c.transport.Put(ctx, "/notifications", payload)
	if err != nil {
		return nil, err
	}

	return processResponse(resp, http.StatusResetContent)
}

func (c *Notifications) MarkReadRepository(
	ctx context.Context,
	owner, repo string,
	opts *MarkReadOptions,
) (any, error) {
	if err := c.validator.Validate(repoParams{Owner: owner, Repo: repo}); err != nil {
		return nil, err
	}

	payload, err := markReadBody(opts)
	if err != nil {
		return nil, err
	}

	resp, err := c.transport.Put(ctx, repoPath(owner, repo, "notifications"), payload)
	if err != nil {
		return nil, err
	}

	return processResponse(resp, http.StatusResetContent)
}

func (c *Notifications) ViewThread(ctx context.Context, id int64) (any, error) {
	if err := c.validator.Validate(threadParams{ThreadID: id}); err != nil {
		return nil, err
	}

	resp, err := c.transport.Get(ctx, "/notifications/threads/"+itoa(id))
	if err != nil {
		return nil, err
	}

	return processResponse(resp, http.StatusOK)
}

func (c *Notifications) MarkReadThread(ctx context.Context, id int64, opts *ThreadReadOptions) (any, error) {
	if err := c.validator.Validate(threadParams{ThreadID: id}); err != nil {
		return nil, err
	}

	req := markReadRequest{Unread: true, Read: true, LastReadAt: ""}
	if opts != nil {
		req.Unread = opts.Unread
		req.Read = opts.Read
	}

	payload, err := encodeBody(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.transport.Patch(ctx, "/notifications/threads/"+itoa(id), payload)
	if err != nil {
		return nil, err
	}

	return processResponse(resp, http.StatusResetContent)
}

func (c *Notifications) GetThreadSubscription(ctx context.Context, id int64) (any, error) {
	if err := c.validator.Validate(threadParams{ThreadID: id}); err != nil {
		return nil, err
	}

	resp, err := c.transport.Get(ctx, subscriptionPath(id))
	if err != nil {
		return nil, err
	}

	return processResponse(resp, http.StatusOK)
}

func (c *Notifications) SetThreadSubscription(ctx context.Context, id int64, subscribed, ignored bool) (any, error) {
	if err := c.validator.Validate(threadParams{ThreadID: id}); err != nil {
		return nil, err
	}

	payload, err := encodeBody(subscriptionRequest{Subscribed: subscribed, Ignored: ignored})
	if err != nil {
		return nil, err
	}

	resp, err := c.transport.Put(ctx, subscriptionPath(id), payload)
	if err != nil {
		return nil, err
	}

	return processResponse(resp, http.StatusOK)
}

// DeleteThreadSubscription mutes a thread.
func (c *Notifications) DeleteThreadSubscription(ctx context.Context, id int64) (any, error) {
	if err := c.validator.Validate(threadParams{ThreadID: id}); err != nil {
		return nil, err
	}

	resp, err := c.transport.Delete(ctx, subscriptionPath(id))
	if err != nil {
		return nil, err
	}

	return processResponse(resp, http.StatusNoContent)
}

func subscriptionPath(id int64) string {
	return "/notifications/threads/" + itoa(id) + "/subscription"
}
