package github

// Path parameters checked before a request is built.

type repoParams struct {
	Owner string `json:"owner" validate:"required,ghname"`
	Repo  string `json:"repo"  validate:"required,ghname"`
}

type issueParams struct {
	Owner  string `json:"owner"  validate:"required,ghname"`
	Repo   string `json:"repo"   validate:"required,ghname"`
	Number int    `json:"number" validate:"gt=0"`
}

type commentParams struct {
	Owner     string `json:"owner"      validate:"required,ghname"`
	Repo      string `json:"repo"       validate:"required,ghname"`
	CommentID int64  `json:"comment_id" validate:"gt=0"`
}

type labelParams struct {
	Owner string `json:"owner" validate:"required,ghname"`
	Repo  string `json:"repo"  validate:"required,ghname"`
	Name  string `json:"name"  validate:"required"`
}

type threadParams struct {
	ThreadID int64 `json:"thread_id" validate:"gt=0"`
}
