package ports

import "context"

// Persisted keys shared by the session and cart stores.
const (
	KeyUser        = "user"
	KeyAuthToken   = "authToken"
	KeyUserID      = "userId"
	KeyCartItems   = "cartItems"
	KeyCartVoucher = "cartVoucher"
)

// KeyValueStore is the durable client storage. A missing key is reported
// with ok == false and a nil error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}
