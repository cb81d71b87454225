package core

import (
	"time"

	"github.com/firebase/genkit/go/genkit"
	"github.com/va6996/ecochat/tools"
)

// Client manages the core set of tools
type Client struct {
	DateTool *DateTool
}

// NewClient initializes the core plugin and registers its tools. anchor
// supplies the reference time for relative dates.
func NewClient(gk *genkit.Genkit, registry *tools.Registry, anchor func() time.Time) *Client {
	return &Client{
		DateTool: NewDateTool(gk, registry, anchor),
	}
}
