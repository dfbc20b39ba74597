package git

import (
	"fmt"

	actions "github.com/sethvargo/go-githubactions"
)

type ClientOpts struct {
	AuthorName, AuthorEmail string
	Action                  *actions.Action
}

// Client is a wrapper around go-git to simplify git operations.
type Client struct {
	authorName  string
	authorEmail string
	a           *actions.Action
}

// NewClient creates a new git client.
func NewClient(opts *ClientOpts) (*Client, error) {
	if opts.AuthorName == "" || opts.AuthorEmail == "" {
		return nil, fmt.Errorf("commit author name and email are required")
	}
	client := Client{
		authorName:  opts.AuthorName,
		authorEmail: opts.AuthorEmail,
		a:           opts.Action,
	}
	if client.a == nil {
		client.a = actions.New()
	}
	return &client, nil
}
