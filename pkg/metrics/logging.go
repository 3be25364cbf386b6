package metrics

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/sirupsen/logrus"
)

// LogFormatter renders entries with a wrapped formatter and forwards them to
// New Relic. Entries logged with a context carrying a transaction are
// attached to that transaction.
//
// Based off of: https://github.com/newrelic/go-agent/blob/f1942e10f0819e2c854d5d7289eb0dc1c52a00af/v3/integrations/logcontext-v2/nrlogrus/formatter.go
type LogFormatter struct {
	app       *newrelic.Application
	formatter logrus.Formatter
}

func NewLogFormatter(app *newrelic.Application, formatter logrus.Formatter) *LogFormatter {
	return &LogFormatter{
		app:       app,
		formatter: formatter,
	}
}

func (f *LogFormatter) Format(e *logrus.Entry) ([]byte, error) {
	rendered, err := f.formatter.Format(e)
	if err != nil {
		return nil, err
	}

	logData := newrelic.LogData{
		Severity: e.Level.String(),
		Message:  forwardedMessage(e),
	}

	var enricher newrelic.EnricherOption
	var txn *newrelic.Transaction
	if e.Context != nil {
		txn = newrelic.FromContext(e.Context)
	}
	switch {
	case txn != nil:
		txn.RecordLog(logData)
		enricher = newrelic.FromTxn(txn)
	case f.app != nil:
		f.app.RecordLog(logData)
		enricher = newrelic.FromApp(f.app)
	default:
		return rendered, nil
	}

	b := bytes.NewBuffer(bytes.TrimRight(rendered, "\n"))
	if err := newrelic.EnrichLog(b, enricher); err != nil {
		return nil, err
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

// forwardedMessage folds the entry's fields into its message, since New Relic
// log records only carry a message and a severity. Fields are sorted by key.
func forwardedMessage(e *logrus.Entry) string {
	if len(e.Data) == 0 {
		return e.Message
	}

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(e.Message)
	for _, k := range keys {
		v := e.Data[k]
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		fmt.Fprintf(&sb, " %s=%q", k, fmt.Sprint(v))
	}
	return sb.String()
}
