package cli

import "errors"

// ErrUsage matches every error caused by how the command was invoked: bad
// flags or arguments, unreadable config, or a document the converter
// rejects. main exits with status 2 for these.
var ErrUsage = errors.New("swagger2postman: usage error")

type usageError struct {
	msg string
}

func newUsageError(msg string) error {
	return usageError{msg: msg}
}

func (e usageError) Error() string {
	return e.msg
}

func (e usageError) Is(target error) bool {
	return target == ErrUsage
}
