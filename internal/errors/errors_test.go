package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap_KeepsCode(t *testing.T) {
	err := Wrap(NoActiveSession(), "failed to export")

	assert.Equal(t, CodeNoActiveSession, GetCode(err))
	assert.Equal(t, "failed to export: no active session: upload a file first", err.Error())
	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestWrap_PlainErrorIsInternal(t *testing.T) {
	err := Wrapf(stderrors.New("disk full"), "failed to write %s", "a.json")

	assert.Equal(t, CodeInternalError, GetCode(err))
	assert.Equal(t, "failed to write a.json: disk full", err.Error())
}

func TestHasCode_WalksChain(t *testing.T) {
	err := fmt.Errorf("resolve: %w", Wrap(VersionConflict("s1/cleaned_df"), "save failed"))

	assert.True(t, HasCode(err, CodeVersionConflict))
	assert.False(t, HasCode(err, CodeNotFound))
	assert.Equal(t, CodeVersionConflict, GetCode(err))
	assert.Equal(t, "UNKNOWN", GetCode(stderrors.New("plain")))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeBusy, stderrors.New("queue full"))

	assert.True(t, IsAppError(err))
	assert.True(t, HasCode(err, CodeBusy))
}
