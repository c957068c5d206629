// Package github wraps the GitHub REST issues and notifications endpoints. Every
// method issues exactly one request through a Transport, checks the status against
// the single code GitHub documents for the operation and returns the JSON body
// decoded into map[string]any, []any and friends.
package github

// GitHub groups the resource clients that share one Options and Transport.
type GitHub struct {
	Options       *Options
	Issues        *Issues
	Notifications *Notifications
}

func New(options *Options, transport Transport) *GitHub {
	if options == nil {
		options = NewOptions(nil)
	}

	return &GitHub{
		Options:       options,
		Issues:        NewIssues(options, transport),
		Notifications: NewNotifications(options, transport),
	}
}
