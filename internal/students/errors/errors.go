package errors

import "errors"

var ErrNotFound = errors.New("student not found")
