package fio

import (
	"errors"
	"os"

	"github.com/gofrs/flock"
)

var ErrLocked = errors.New("fio: location is locked by another owner")

type FileLocker interface {
	TryLock() (bool, error)
	Unlock() error
	Path() string
}

const flockSuffix = ".flock"

// LockPath is the lock file guarding the database at location
func LockPath(location string) string {
	return location + flockSuffix
}

func NewFlock(location string) *flock.Flock {
	return flock.New(LockPath(location))
}

// Acquire takes the lock for location without waiting
func Acquire(location string) (FileLocker, error) {
	fl := NewFlock(location)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLocked
	}
	return fl, nil
}

// Discard removes the lock file while the lock is still held, then releases it
func Discard(fl FileLocker) error {
	err := os.Remove(fl.Path())
	if errors.Is(err, os.ErrNotExist) {
		err = nil
	}
	return errors.Join(err, fl.Unlock())
}
