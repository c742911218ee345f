package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneKeepsIdentity(t *testing.T) {
	clone := Clone(ErrAlreadyEnrolled, "student s1 already enrolled in c1")
	assert.True(t, errors.Is(clone, ErrAlreadyEnrolled))
	assert.False(t, errors.Is(clone, ErrAlreadyWaitlisted))
	assert.Equal(t, http.StatusConflict, clone.Status)
	assert.Equal(t, KindConflict, clone.Kind)
	assert.Equal(t, "student already enrolled in class", ErrAlreadyEnrolled.Message)
}

func TestFromErrorMapsUnknownToStorage(t *testing.T) {
	appErr := FromError(fmt.Errorf("dial tcp: %w", sql.ErrConnDone))
	assert.Equal(t, ErrStorage.Code, appErr.Code)
	assert.True(t, appErr.Retryable())
	assert.ErrorIs(t, appErr, sql.ErrConnDone)
}

func TestOnlyStorageFailuresAreRetryable(t *testing.T) {
	for _, e := range []*Error{ErrNotFound, ErrClassFrozen, ErrWaitlistCapExceeded, ErrAlreadyDropped, ErrDuplicateClass, ErrValidation} {
		assert.False(t, e.Retryable(), e.Code)
	}
	assert.True(t, Wrap(errors.New("boom"), ErrStorage, "failed to enroll").Retryable())
}

func TestFromErrorPassesThroughWrapped(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Clone(ErrClassFrozen, ""))
	appErr := FromError(wrapped)
	assert.Equal(t, ErrClassFrozen.Code, appErr.Code)
	assert.Nil(t, FromError(nil))
}
