package metrics

import (
	"context"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// MethodTracer times a method call as a segment of the transaction on the
// context. A nil MethodTracer is valid and records nothing.
type MethodTracer struct {
	txn *newrelic.Transaction
	seg *newrelic.Segment
}

// TraceMethodCall starts a segment named "<structOrPackageName>.<methodName>".
// It returns nil when ctx carries no transaction.
func TraceMethodCall(ctx context.Context, structOrPackageName, methodName string) *MethodTracer {
	txn := newrelic.FromContext(ctx)
	if txn == nil {
		return nil
	}

	return &MethodTracer{
		txn: txn,
		seg: txn.StartSegment(structOrPackageName + "." + methodName),
	}
}

func (t *MethodTracer) AddAttribute(key string, value interface{}) {
	if t == nil {
		return
	}
	t.seg.AddAttribute(key, value)
}

// End closes the segment. A non-nil err is reported on the transaction.
func (t *MethodTracer) End(err error) {
	if t == nil {
		return
	}

	if err != nil {
		t.seg.AddAttribute("error", err.Error())
		t.txn.NoticeError(err)
	}
	t.seg.End()
}
