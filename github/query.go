package github

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DateLayout renders filter dates with an explicit offset, e.g. 2012-01-01T12:12:12+00:00.
const DateLayout = "2006-01-02T15:04:05-07:00"

// ListOptions selects a page of a paginated listing. Zero values are not sent.
type ListOptions struct {
	Page    int `json:"page"     validate:"gte=0"`
	PerPage int `json:"per_page" validate:"gte=0,max=100"`
}

func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// query collects key=value pairs in insertion order.
type query struct {
	parts []string
}

func (q *query) add(key, value string) {
	if value != "" {
		q.parts = append(q.parts, key+"="+url.QueryEscape(value))
	}
}

func (q *query) addFlag(key string, set bool) {
	if set {
		q.parts = append(q.parts, key+"=1")
	}
}

func (q *query) addList(key string, values []string) {
	if len(values) == 0 {
		return
	}

	escaped := make([]string, 0, len(values))
	for _, value := range values {
		escaped = append(escaped, url.QueryEscape(value))
	}

	q.parts = append(q.parts, key+"="+strings.Join(escaped, ","))
}

// addDate keeps the offset's "+" literal.
func (q *query) addDate(key string, t *time.Time) {
	if t != nil {
		q.parts = append(q.parts, key+"="+FormatDate(*t))
	}
}

func (q *query) addPage(opts *ListOptions) {
	if opts == nil {
		return
	}

	if opts.Page > 0 {
		q.parts = append(q.parts, "page="+strconv.Itoa(opts.Page))
	}

	if opts.PerPage > 0 {
		q.parts = append(q.parts, "per_page="+strconv.Itoa(opts.PerPage))
	}
}

func (q *query) apply(path string) string {
	if len(q.parts) == 0 {
		return path
	}

	return path + "?" + strings.Join(q.parts, "&")
}

func repoPath(owner, repo string, elems ...string) string {
	var b strings.Builder

	b.WriteString("/repos/")
	b.WriteString(owner)
	b.WriteString("/")
	b.WriteString(repo)

	for _, elem := range elems {
		b.WriteString("/")
		b.WriteString(elem)
	}

	return b.String()
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
