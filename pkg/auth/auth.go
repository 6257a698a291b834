package auth

import "context"

// Identity of the acting user, set by the gateway that owns authentication.
// The service trusts these headers; token issuance and validation live
// outside this deployable.
const (
	XUserIDHeader   = "X-User-Id"
	XUserNameHeader = "X-User-Name"
)

type Identity struct {
	UserID   int64
	Username string
}

type identityKey struct{}

func SetIdentity(ctx context.Context, userID int64, username string) context.Context {
	return context.WithValue(ctx, identityKey{}, Identity{UserID: userID, Username: username})
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
