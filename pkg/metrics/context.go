package metrics

import (
	"context"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// NewRelicContextKey is the context key holding the *newrelic.Application.
type NewRelicContextKey struct{}

// NewContext places app on ctx. A nil app leaves ctx untouched, which turns
// every helper in this package into a no-op.
func NewContext(ctx context.Context, app *newrelic.Application) context.Context {
	if app == nil {
		return ctx
	}
	return context.WithValue(ctx, NewRelicContextKey{}, app)
}

func fromContext(ctx context.Context) (*newrelic.Application, bool) {
	nr, ok := ctx.Value(NewRelicContextKey{}).(*newrelic.Application)
	return nr, ok && nr != nil
}

// StartTransaction starts a New Relic transaction named name and returns a
// context carrying it, so TraceMethodCall segments attach to it. The returned
// func ends the transaction.
func StartTransaction(ctx context.Context, name string) (context.Context, func()) {
	nr, ok := fromContext(ctx)
	if !ok {
		return ctx, func() {}
	}

	txn := nr.StartTransaction(name)
	return newrelic.NewContext(ctx, txn), txn.End
}
