package errors

import (
	"database/sql"
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(fmt.Errorf("boom"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
}

func TestCloneKeepsIdentity(t *testing.T) {
	err := Clone(ErrNotFound, "lesson not found")
	assert.Equal(t, "lesson not found", err.Message)
	assert.True(t, stdErrors.Is(err, ErrNotFound))
	assert.False(t, stdErrors.Is(err, ErrConflict))
	assert.Equal(t, "resource not found", ErrNotFound.Message)
}

func TestInternalUnwraps(t *testing.T) {
	err := Internal(sql.ErrConnDone, "failed to load lesson")
	assert.True(t, stdErrors.Is(err, sql.ErrConnDone))
	assert.True(t, IsCode(fmt.Errorf("ctx: %w", err), ErrInternal.Code))
	assert.False(t, IsCode(sql.ErrConnDone, ErrInternal.Code))
}
