package conversation

import "sync"

// turnLocks serializes turns per user identity. The session store's
// read-modify-write spans a whole turn, so two concurrent turns for the
// same user must not interleave.
type turnLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (t *turnLocks) forUser(userID string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.locks == nil {
		t.locks = make(map[string]*sync.Mutex)
	}
	lock, ok := t.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		t.locks[userID] = lock
	}
	return lock
}
