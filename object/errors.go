// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package object

import "errors"

var (
	ErrNotAWriter   = errors.New("object: caller is not an authorized writer")
	ErrNoDRP        = errors.New("object: object has no application DRP attached")
	ErrMissingState = errors.New("object: no recorded state at the requested vertex")
	ErrSyncNeeded   = errors.New("object: merge left vertices with unmet dependencies")
)
