package router

import (
	"github.com/adrianliechti/scanpress/pkg/provider"
)

// Route is one named model a router may send a page to.
type Route struct {
	Name string

	Completer provider.Completer
}
