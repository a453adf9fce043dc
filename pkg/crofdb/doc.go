// Package crofdb is a client for the hosted nahcrof key-value database.
//
// A Client holds a username (the database location) and an API key and issues one
// HTTP request per call. It keeps no mutable state after construction, so a single
// Client may be shared across goroutines.
//
//	db := crofdb.New("my-location", "my-token")
//	if _, err := db.Create(ctx, "greeting", "hello"); err != nil {
//		return err
//	}
//	v, err := db.Get(ctx, "greeting")
//
// Failures are reported as *NetworkError, *ServerError or *ParseError, and Get
// returns an error wrapping ErrNotFound for missing keys.
package crofdb
