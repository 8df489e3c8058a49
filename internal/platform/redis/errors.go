package redis

import "errors"

var errNotConfigured = errors.New("redis host is not configured")
