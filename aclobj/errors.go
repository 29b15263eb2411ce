// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package aclobj

import "errors"

var (
	ErrNotAdmin                         = errors.New("aclobj: caller is not an admin")
	ErrPermissionlessForbidsWriterGrant = errors.New("aclobj: cannot grant writer while permissionless")
	ErrCannotRevokeFromAdmin            = errors.New("aclobj: cannot revoke permissions from an admin")
	ErrUnknownOperation                 = errors.New("aclobj: unknown operation")
	ErrUnknownQuery                     = errors.New("aclobj: unknown query")
	ErrInvalidStateEntry                = errors.New("aclobj: invalid state entry")
	ErrInvalidArguments                 = errors.New("aclobj: invalid arguments")
	ErrUnknownGroup                     = errors.New("aclobj: unknown group")
)
