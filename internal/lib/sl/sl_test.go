package sl_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/qc-admin/internal/lib/sl"
)

func TestErr_ReturnsCorrectAttr(t *testing.T) {
	err := errors.New("something went wrong")
	attr := sl.Err(err)

	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, slog.StringValue("something went wrong"), attr.Value)
}

func TestOp_ReturnsCorrectAttr(t *testing.T) {
	attr := sl.Op("session.Login")

	assert.Equal(t, "op", attr.Key)
	assert.Equal(t, slog.StringValue("session.Login"), attr.Value)
}

func TestToken_TruncatesLongToken(t *testing.T) {
	attr := sl.Token("eyJhbGciOiJIUzI1NiJ9.payload.signature")

	assert.Equal(t, "token", attr.Key)
	assert.Equal(t, slog.StringValue("eyJhbGci..."), attr.Value)
}

func TestToken_ShortTokenUnchanged(t *testing.T) {
	attr := sl.Token("abc")

	assert.Equal(t, slog.StringValue("abc"), attr.Value)
}
