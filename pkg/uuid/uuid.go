// Copyright (c) 2026 Lexica. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid generates the time-ordered identifiers used as account keys.

Version 7 values sort by creation time, which keeps the users.account primary
key index append-mostly.
*/
package uuid

import "github.com/google/uuid"

// New generates a new UUIDv7 string.
//
// Entropy failure is unrecoverable, so it panics.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("uuid: failed to generate UUIDv7: " + err.Error())
	}
	return id.String()
}
