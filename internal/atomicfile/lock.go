package atomicfile

import (
	"errors"
	"sync"
	"time"
)

// ErrLocked is returned when another holder keeps the lock past the timeout.
var ErrLocked = errors.New("file is locked")

// DefaultLockTimeout bounds how long Lock waits for a competing holder.
const DefaultLockTimeout = 5 * time.Second

// Unlock releases a lock. It is safe to call more than once.
type Unlock func()

func (s *Store) lockTimeout() time.Duration {
	if s.LockTimeout <= 0 {
		return DefaultLockTimeout
	}
	return s.LockTimeout
}

// Lock takes an exclusive advisory lock guarding path.
func (s *Store) Lock(path string) (Unlock, error) {
	release, err := acquire(path+".lock", s.lockTimeout())
	if err != nil {
		return func() {}, err
	}
	var once sync.Once
	return func() { once.Do(release) }, nil
}
