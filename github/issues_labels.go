package github

import (
	"context"
	"net/http"
	"net/url"
)

// labelRequest passes Color through untouched. GitHub expects six hex digits without '#'.
type labelRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func labelPath(owner, repo, name string) string {
	return repoPath(owner, repo, "labels", url.PathEscape(name))
}

func (c *Issues) CreateLabel(ctx context.Context, owner, repo, name, color string) (any, error) {
	if err := c.validator.Validate(labelParams{Owner: owner, Repo: repo, Name: name}); err != nil {
		return nil, err
	}

	payload, err := encodeBody(labelRequest{Name: name, Color: color})
	if err != nil {
		return nil, err
	}

	resp, err := c.transport.Post(ctx, repoPath(owner, repo, "labels"), payload)
	if err != nil {
		return nil, err
	}

	return processResponse(resp, http.StatusCreated)
}

// EditLabel renames and recolors the label currently called label.
func (c *Issues) EditLabel(ctx context.Context, owner, repo, label, name, color string) (any, error) {
	if err := c.validator.Validate(labelParams{Owner: owner, Repo: repo, Name: label}); err != nil {
		return nil, err
	}

	payload, err := encodeBody(labelRequest{Name: name, Color: color})
	if err != nil {
		return nil, err
	}

	resp, err := c.transport.Patch(ctx, labelPath(owner, repo, label), payload)
	if err != nil {
		return nil, err
	}

	return processResponse(resp, http.StatusOK)
}

func (c *Issues) GetLabel(ctx context.Context, owner, repo, name string) (any, error) {
	if err := c.validator.Validate(labelParams{Owner: owner, Repo: repo, Name: name}); err != nil {
		return nil, err
	}

	resp, err := c.transport.Get(ctx, labelPath(owner, repo, name))
	if err != nil {
		return nil, err
	}

	return processResponse(resp, http.StatusOK)
}

func (c *Issues) GetLabels(ctx context.Context, owner, repo string) (any, error) {
	if err := c.validator.Validate(repoParams{Owner: owner, Repo: repo}); err != nil {
		return nil, err
	}

	resp, err := c.transport.Get(ctx, repoPath(owner, repo, "labels"))
	if err != nil {
		return nil, err
	}

	return processResponse(resp, http.StatusOK)
}

func (c *Issues) DeleteLabel(ctx context.Context, owner, repo, name string) error {
	if err := c.validator.Validate(labelParams{Owner: owner, Repo: repo, Name: name}); err != nil {
		return err
	}

	resp, err := c.transport.Delete(ctx, labelPath(owner, repo, name))
	if err != nil {
		return err
	}

	return checkStatus(resp, http.StatusNoContent)
}
