package etl

import (
	"github.com/cockroachdb/errors"
)

// Failure classes of a run. Causes are wrapped with context and marked with
// one of these, so callers test them with errors.Is.
var (
	ErrUsage     = errors.New("usage error")
	ErrQuery     = errors.New("query error")
	ErrIO        = errors.New("io error")
	ErrTransform = errors.New("transform error")
)

// UsageHint is attached to usage errors.
const UsageHint = "Usage: migrate --from <sflight-home-dir>"

func markf(err error, class error, format string, args ...interface{}) error {
	return errors.Mark(errors.Wrapf(err, format, args...), class)
}
