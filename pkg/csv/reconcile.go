package csv

import (
	"github.com/charmbracelet/log"
)

// reconciler adjusts rows to the expected field count.
type reconciler struct {
	expected     int
	excess       ExcessFieldsPolicy
	insufficient InsufficientFieldsPolicy
	skip         bool
	logger       *log.Logger
}

func newReconciler(opts ReaderOptions) *reconciler {
	return &reconciler{
		expected:     opts.ExpectedFieldCount,
		excess:       opts.ExcessFields,
		insufficient: opts.InsufficientFields,
		skip:         opts.SkipMismatchedRows,
		logger:       opts.Logger,
	}
}

// expect sets the expected field count unless one is already set.
func (c *reconciler) expect(n int) {
	if c.expected == 0 {
		c.expected = n
	}
}

// reconcile returns the adjusted row and whether to keep it. row is the
// logical row number used in errors and log messages.
func (c *reconciler) reconcile(fields []string, row int) ([]string, bool, error) {
	c.expect(len(fields))
	actual := len(fields)
	if actual == c.expected {
		return fields, true, nil
	}

	if c.skip {
		c.drop(row, actual, "skip mismatched")
		return nil, false, nil
	}

	if actual > c.expected {
		switch c.excess {
		case ExcessTrim:
			return fields[:c.expected], true, nil
		case ExcessIgnore:
			c.drop(row, actual, "excess")
			return nil, false, nil
		}
		return nil, false, &FieldCountError{Expected: c.expected, Actual: actual, Row: row}
	}

	switch c.insufficient {
	case InsufficientEmptyString:
		padded := make([]string, c.expected)
		copy(padded, fields)
		return padded, true, nil
	case InsufficientIgnore:
		c.drop(row, actual, "insufficient")
		return nil, false, nil
	}
	return nil, false, &FieldCountError{Expected: c.expected, Actual: actual, Row: row}
}

func (c *reconciler) drop(row, actual int, reason string) {
	if c.logger == nil {
		return
	}
	c.logger.Debug("dropped row", "row", row, "fields", actual, "expected", c.expected, "policy", reason)
}
