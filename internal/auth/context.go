// internal/auth/context.go
//
// Owner-identity context carrier.
//
// Usage
// -----
//	ctx = auth.WithOwner(ctx, 123)   // set by the bearer middleware
//	id, ok := auth.OwnerID(ctx)      // read anywhere downstream
//
// Anonymity is a normal value: ok == false simply means "no verified
// caller", which the public page treats as the default view, never as an
// error.
//
// Notes
// -----
// • Stores an int64 directly in context under an unexported key type.
// • Oxford commas, two spaces after periods.
package auth

import "context"

type ownerKey struct{}

// WithOwner returns a new context carrying the verified owner id.
func WithOwner(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, ownerKey{}, id)
}

// OwnerID extracts the owner id from ctx.  It returns (0, false) when no
// verified caller is attached.
func OwnerID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(ownerKey{}).(int64)
	return id, ok
}
