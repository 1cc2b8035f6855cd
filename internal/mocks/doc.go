// Package mocks provides function-field mocks of the gateway's interfaces.
//
// Each mock delegates to its Fn field when set and otherwise falls back to
// canned data, so most tests only fill the fields they care about:
//
//	dir := &mocks.MockUserDirectory{
//	    Admins: map[int64]bool{6: true},
//	}
//
// Mocks record nothing and are not safe for concurrent mutation.
package mocks
