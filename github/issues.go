package github

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/andyle182810/ghclient/validator"
)

// IssueOptions holds the optional fields of a new issue. Empty strings are not sent.
// A nil Labels is not sent; a non-nil empty Labels is sent as [].
type IssueOptions struct {
	Assignee  string
	Milestone string
	Labels    []string
}

// IssueEdit holds the fields to change. Only non-empty fields are sent; a non-nil
// empty Labels clears every label.
type IssueEdit struct {
	State     string
	Title     string
	Body      string
	Assignee  string
	Milestone string
	Labels    []string
}

// IssueListOptions filters GET /issues.
type IssueListOptions struct {
	Filter    string     `json:"filter"    validate:"omitempty,oneof=assigned created mentioned subscribed all"`
	State     string     `json:"state"     validate:"omitempty,oneof=open closed all"`
	Labels    []string   `json:"labels"`
	Sort      string     `json:"sort"      validate:"omitempty,oneof=created updated comments"`
	Direction string     `json:"direction" validate:"omitempty,oneof=asc desc"`
	Since     *time.Time `json:"since"`
	ListOptions
}

// RepositoryIssueListOptions filters GET /repos/{owner}/{repo}/issues. Milestone takes
// a number, "*" or "none"; Assignee takes a login, "*" or "none".
type RepositoryIssueListOptions struct {
	Milestone string     `json:"milestone"`
	State     string     `json:"state"     validate:"omitempty,oneof=open closed all"`
	Assignee  string     `json:"assignee"`
	Mentioned string     `json:"mentioned"`
	Labels    []string   `json:"labels"`
	Sort      string     `json:"sort"      validate:"omitempty,oneof=created updated comments"`
	Direction string     `json:"direction" validate:"omitempty,oneof=asc desc"`
	Since     *time.Time `json:"since"`
	ListOptions
}

//nolint:tagliatelle
type createIssueRequest struct {
	Title     string    `json:"title"`
	Assignee  string    `json:"assignee,omitempty"`
	Milestone string    `json:"milestone,omitempty"`
	Labels    *[]string `json:"labels,omitempty"`
	Body      string    `json:"body"`
}

type editIssueRequest struct {
	Title     string    `json:"title,omitempty"`
	Body      string    `json:"body,omitempty"`
	State     string    `json:"state,omitempty"`
	Assignee  string    `json:"assignee,omitempty"`
	Milestone string    `json:"milestone,omitempty"`
	Labels    *[]string `json:"labels,omitempty"`
}

// Issues wraps the issues, issue comments and labels endpoints.
type Issues struct {
	options   *Options
	transport Transport
	validator *validator.Validator
}

func NewIssues(options *Options, transport Transport) *Issues {
	return &Issues{
		options:   options,
		transport: transport,
		validator: validator.New(),
	}
}

func (c *Issues) Options() *Options {
	return c.options
}

func labelsField(labels []string) *[]string {
	if labels == nil {
		return nil
	}

	return &labels
}

func (c *Issues) Create(
	ctx context.Context,
	owner, repo, title, body string,
	opts *IssueOptions,
) (any, error) {
	if err := c.validator.Validate(repoParams{Owner: owner, Repo: repo}); err != nil {
		return nil, err
	}

	req := createIssueRequest{
		Title:     title,
		Assignee:  "",
		Milestone: "",
		Labels:    nil,
		Body:      body,
	}

	if opts != nil {
		req.Assignee = opts.Assignee
		req.Milestone = opts.Milestone
		req.Labels = labelsField(opts.Labels)
	}

	payload, err := encodeBody(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.transport.Post(ctx, repoPath(owner, repo, "issues"), payload)
	if err != nil {
		return nil, err
	}

	return processResponse(resp, http.StatusCreated)
}

// Edit updates an issue. The state is passed through as given.
func (c *Issues) Edit(ctx context.Context, owner, repo string, number int, edit *IssueEdit) (any, error) {
	if err := c.validator.Validate(issueParams{Owner: owner, Repo: repo, Number: number}); err != nil {
		return nil, err
	}

	if edit == nil {
		edit = &IssueEdit{} //nolint:exhaustruct
	}

	payload, err := encodeBody(editIssueRequest{
		Title:     edit.Title,
		Body:      edit.Body,
		State:     edit.State,
		Assignee:  edit.Assignee,
		Milestone: edit.Milestone,
		Labels:    labelsField(edit.Labels),
	})
	if err != nil {
		return nil, err
	}

	resp, err := c.transport.Patch(ctx, repoPath(owner, repo, "issues", strconv.Itoa(number)), payload)
	if err != nil {
		return nil, err
	}

	return processResponse(resp, http.StatusOK)
}

func (c *Issues) Get(ctx context.Context, owner, repo string, number int) (any, error) {
	if err := c.validator.Validate(issueParams{Owner: owner, Repo: repo, Number: number}); err != nil {
		return nil, err
	}

	resp, err := c.transport.Get(ctx, repoPath(owner, repo, "issues", strconv.Itoa(number)))
	if err != nil {
		return nil, err
	}

	return processResponse(resp, http.StatusOK)
}

// GetList lists issues assigned to the authenticated user across repositories.
func (c *Issues) GetList(ctx context.Context, opts *IssueListOptions) (any, error) {
	var q query

	if opts != nil {
		if err := c.validator.Validate(opts); err != nil {
			return nil, err
		}

		q.add("filter", opts.Filter)
		q.add("state", opts.State)
		q.addList("labels", opts.Labels)
		q.add("sort", opts.Sort)
		q.add("direction", opts.Direction)
		q.addDate("since", opts.Since)
		q.addPage(&opts.ListOptions)
	}

	resp, err := c.transport.Get(ctx, q.apply("/issues"))
	if err != nil {
		return nil, err
	}

	return processResponse(resp, http.StatusOK)
}

func (c *Issues) GetListByRepository(
	ctx context.Context,
	owner, repo string,
	opts *RepositoryIssueListOptions,
) (any, error) {
	if err := c.validator.Validate(repoParams{Owner: owner, Repo: repo}); err != nil {
		return nil, err
	}

	var q query

	if opts != nil {
		if err := c.validator.Validate(opts); err != nil {
			return nil, err
		}

		q.add("milestone", opts.Milestone)
		q.add("state", opts.State)
		q.add("assignee", opts.Assignee)
		q.add("mentioned", opts.Mentioned)
		q.addList("labels", opts.Labels)
		q.add("sort", opts.Sort)
		q.add("direction", opts.Direction)
		q.addDate("since", opts.Since)
		q.addPage(&opts.ListOptions)
	}

	resp, err := c.transport.Get(ctx, q.apply(repoPath(owner, repo, "issues")))
	if err != nil {
		return nil, err
	}

	return processResponse(resp, http.StatusOK)
}
