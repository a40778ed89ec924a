package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	l, err := New("debug", "console")
	require.NoError(t, err)
	assert.NotNil(t, l.Logger)

	_, err = New("verbose", "json")
	assert.Error(t, err)

	_, err = New("info", "xml")
	assert.Error(t, err)
}

func TestNewDefaultsToJSON(t *testing.T) {
	l, err := New("info", "")
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestFields(t *testing.T) {
	assert.Equal(t, "slot", StringField("slot", "primary").Key)
	assert.Equal(t, int64(3), IntField("images", 3).Integer)
	assert.Equal(t, "error", ErrorField(errors.New("boom")).Key)
	assert.Equal(t, "name", Field("name", 1).Key)
}

func TestContextLogger(t *testing.T) {
	fallback := NewNop()
	assert.Same(t, fallback, FromContext(context.Background(), fallback))

	scoped := fallback.With(StringField("request_id", "r-1"))
	ctx := NewContext(context.Background(), scoped)
	assert.Same(t, scoped, FromContext(ctx, fallback))
}
