package luahost

import "errors"

// ErrHostClosed is returned through operation handles once Close has
// been called.
var ErrHostClosed = errors.New("luahost: host is closed")
