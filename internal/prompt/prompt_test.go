package prompt

import (
	"errors"
	"io"
	"testing"

	"github.com/chzyer/readline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Prompter = (*ReadlinePrompter)(nil)

func TestFinish(t *testing.T) {
	v, err := finish(" value ", nil)
	require.NoError(t, err)
	assert.Equal(t, "value", v)

	v, err = finish("partial", io.EOF)
	require.NoError(t, err)
	assert.Equal(t, "partial", v)

	_, err = finish("typed", readline.ErrInterrupt)
	assert.ErrorIs(t, err, ErrAborted)

	_, err = finish("", io.EOF)
	assert.ErrorIs(t, err, ErrAborted)

	_, err = finish("typed", errors.New("tty gone"))
	assert.ErrorContains(t, err, "tty gone")
}

func TestRequired(t *testing.T) {
	answers := []string{"", "", "pw"}
	calls := 0
	ask := func(string) (string, error) {
		v := answers[calls]
		calls++
		return v, nil
	}

	v, err := Required(ask, "Store password: ", 3)
	require.NoError(t, err)
	assert.Equal(t, "pw", v)
	assert.Equal(t, 3, calls)

	calls = 0
	_, err = Required(ask, "Store password: ", 2)
	assert.EqualError(t, err, `no value given for "Store password"`)

	_, err = Required(func(string) (string, error) { return "", ErrAborted }, "x", 3)
	assert.ErrorIs(t, err, ErrAborted)
}
