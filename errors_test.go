package prioritydb

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Messages(t *testing.T) {
	assert.Equal(t, "Must specify a nonzero max_size", ErrInvalidConfiguration.Error())
	assert.Equal(t, "unable to open database file", ErrStorageUnavailable.Error())
}

func TestError_IsBySentinel(t *testing.T) {
	err := wrap(ErrStorageUnavailable, io.ErrUnexpectedEOF)
	assert.Equal(t, "unable to open database file", err.Error())
	assert.True(t, errors.Is(err, ErrStorageUnavailable))
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.False(t, errors.Is(err, ErrLocationInUse))
	assert.False(t, errors.Is(err, ErrInvalidConfiguration))

	wrapped := fmt.Errorf("open index: %w", err)
	assert.True(t, errors.Is(wrapped, ErrStorageUnavailable))
	assert.Equal(t, KindStorageUnavailable, KindOf(wrapped))

	rewrapped := wrap(err.(*Error), io.EOF)
	assert.True(t, errors.Is(rewrapped, ErrStorageUnavailable))
}

func TestError_SameKindSentinels(t *testing.T) {
	assert.False(t, errors.Is(ErrNegativeSize, ErrExceedMaxBatchNum))
	assert.False(t, errors.Is(ErrExceedMaxBatchNum, ErrNegativeSize))
	assert.False(t, errors.Is(ErrStorageUnavailable, ErrLocationInUse))
	assert.Equal(t, KindOf(ErrNegativeSize), KindOf(ErrExceedMaxBatchNum))

	locked := wrap(ErrLocationInUse, io.EOF)
	assert.True(t, errors.Is(locked, ErrLocationInUse))
	assert.False(t, errors.Is(locked, ErrStorageUnavailable))
	assert.Equal(t, KindStorageUnavailable, KindOf(locked))
}

func TestError_StorageFailure(t *testing.T) {
	assert.Nil(t, storageFailure("insert", nil))

	err := storageFailure("insert", io.ErrShortWrite)
	assert.True(t, errors.Is(err, ErrStorageFailure))
	assert.True(t, errors.Is(err, io.ErrShortWrite))
	assert.Equal(t, KindStorageFailure, KindOf(err))
	assert.Contains(t, err.Error(), "insert")
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(nil))
	assert.Equal(t, KindUnknown, KindOf(io.EOF))
	assert.Equal(t, KindNotFound, KindOf(ErrNotFound))
	assert.Equal(t, "NotFound", KindNotFound.String())
	assert.Equal(t, "Unknown", ErrorKind(99).String())
}
