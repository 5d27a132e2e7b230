package interfaces

import "context"

// ILocker serialises work on a key across requests (and, for distributed
// implementations, across instances). The returned func releases the lock.
type ILocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
