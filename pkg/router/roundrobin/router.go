package roundrobin

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/adrianliechti/scanpress/pkg/provider"
	"github.com/adrianliechti/scanpress/pkg/router"
)

var _ provider.Completer = (*Completer)(nil)

var ErrNoRoutes = errors.New("no routes configured")

// Completer spreads page submissions over several models in turn.
type Completer struct {
	completers []provider.Completer

	next atomic.Uint64
}

func NewCompleter(routes ...router.Route) (*Completer, error) {
	completers := []provider.Completer{}

	for _, r := range routes {
		if r.Completer == nil {
			continue
		}

		completers = append(completers, r.Completer)
	}

	if len(completers) == 0 {
		return nil, ErrNoRoutes
	}

	c := &Completer{
		completers: completers,
	}

	return c, nil
}

func (c *Completer) Complete(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) (*provider.Completion, error) {
	index := (c.next.Add(1) - 1) % uint64(len(c.completers))
	provider := c.completers[index]

	return provider.Complete(ctx, messages, options)
}
