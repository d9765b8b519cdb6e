// Copyright (c) 2026 VeriClass. All rights reserved.

// Package uuid generates the time-ordered UUIDv7 strings used as primary
// keys across the platform. Version 7 keeps Postgres B-tree inserts
// append-mostly, unlike random v4 keys.
package uuid

import "github.com/google/uuid"

// New returns a fresh UUIDv7 string. It panics if the system entropy
// source fails, since no record can be created without an ID.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("uuid: failed to generate UUIDv7: " + err.Error())
	}
	return id.String()
}
