// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package node

import "errors"

// ErrUnknownObject is returned by calls that need a locally-registered
// Object the Node does not host.
var ErrUnknownObject = errors.New("node: object not registered")
