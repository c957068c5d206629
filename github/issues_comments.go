package github

import (
	"context"
	"net/http"
	"strconv"
)

type commentRequest struct {
	Body string `json:"body"`
}

func (c *Issues) CreateComment(ctx context.Context, owner, repo string, number int, body string) (any, error) {
	if err := c.validator.Validate(issueParams{Owner: owner, Repo: repo, Number: number}); err != nil {
		return nil, err
	}

	payload, err := encodeBody(commentRequest{Body: body})
	if err != nil {
		return nil, err
	}

	resp, err := c.transport.Post(ctx, repoPath(owner, repo, "issues", strconv.Itoa(number), "comments"), payload)
	if err != nil {
		return nil, err
	}

	return processResponse(resp, http.StatusCreated)
}

func (c *Issues) EditComment(ctx context.Context, owner, repo string, commentID int64, body string) (any, error) {
	if err := c.validator.Validate(commentParams{Owner: owner, Repo: repo, CommentID: commentID}); err != nil {
		return nil, err
	}

	payload, err := encodeBody(commentRequest{Body: body})
	if err != nil {
		return nil, err
	}

	resp, err := c.transport.Patch(ctx, repoPath(owner, repo, "issues", "comments", itoa(commentID)), payload)
	if err != nil {
		return nil, err
	}

	return processResponse(resp, http.StatusOK)
}

func (c *Issues) GetComment(ctx context.Context, owner, repo string, commentID int64) (any, error) {
	if err := c.validator.Validate(commentParams{Owner: owner, Repo: repo, CommentID: commentID}); err != nil {
		return nil, err
	}

	resp, err := c.transport.Get(ctx, repoPath(owner, repo, "issues", "comments", itoa(commentID)))
	if err != nil {
		return nil, err
	}

	return processResponse(resp, http.StatusOK)
}

func (c *Issues) GetComments(ctx context.Context, owner, repo string, number int, opts *ListOptions) (any, error) {
	if err := c.validator.Validate(issueParams{Owner: owner, Repo: repo, Number: number}); err != nil {
		return nil, err
	}

	var q query

	if opts != nil {
		if err := c.validator.Validate(opts); err != nil {
			return nil, err
		}

		q.addPage(opts)
	}

	resp, err := c.transport.Get(ctx, q.apply(repoPath(owner, repo, "issues", strconv.Itoa(number), "comments")))
	if err != nil {
		return nil, err
	}

	return processResponse(resp, http.StatusOK)
}

func (c *Issues) DeleteComment(ctx context.Context, owner, repo string, commentID int64) error {
	if err := c.validator.Validate(commentParams{Owner: owner, Repo: repo, CommentID: commentID}); err != nil {
		return err
	}

	resp, err := c.transport.Delete(ctx, repoPath(owner, repo, "issues", "comments", itoa(commentID)))
	if err != nil {
		return err
	}

	return checkStatus(resp, http.StatusNoContent)
}
