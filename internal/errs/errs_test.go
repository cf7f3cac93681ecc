package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesByCode(t *testing.T) {
	err := NotFoundf("post %s not found", "abc")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "post abc not found", err.Error())
}

func TestWrapKeepsCause(t *testing.T) {
	cause := Wrap(StorageUnavailable, fmt.Errorf("disk gone"), "write artifact")
	err := Wrap(CommitFailed, cause, "commit createPost")

	assert.True(t, errors.Is(err, ErrCommitFailed))
	assert.True(t, errors.Is(err, ErrStorageUnavailable))
	assert.Equal(t, CommitFailed, CodeOf(err))
	assert.Equal(t, "commit createPost", MessageOf(err))
	assert.Contains(t, err.Error(), "disk gone")
}

func TestCodeOfPlainError(t *testing.T) {
	assert.Equal(t, Unknown, CodeOf(errors.New("boom")))
	assert.Equal(t, "boom", MessageOf(errors.New("boom")))
	assert.False(t, Unknown.Client())
	assert.True(t, InvalidOperation.Client())
	assert.True(t, Forbidden.Client())
	assert.False(t, CommitFailed.Client())
}

func TestForbidden(t *testing.T) {
	err := Forbiddenf("only the creator can close voting %s", "v1")

	assert.True(t, errors.Is(err, ErrForbidden))
	assert.False(t, errors.Is(err, ErrInvalidOperation))
	assert.Equal(t, "Forbidden", CodeOf(err).String())
}
