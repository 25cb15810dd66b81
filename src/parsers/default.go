package parsers

import (
	"github.com/username/moneyfolio/src/parsers/revolut"
	"github.com/username/moneyfolio/src/parsers/tatrabanka"
	"github.com/username/moneyfolio/src/parsers/vub"
)

// Default builds the registry with every built-in extractor. The order
// matters: it decides which extractor wins when a file is ambiguous.
func Default() *Registry {
	r := NewRegistry()
	r.Register(revolut.NewParser())
	r.Register(tatrabanka.NewParser())
	r.Register(vub.NewParser())
	return r
}
