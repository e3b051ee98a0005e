// ABOUTME: Tests for prompt forms and their validators
// ABOUTME: Forms are built but not run; validators are exercised directly

package forms

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTheme(t *testing.T) {
	th := Theme()
	require.NotNil(t, th)
	assert.Equal(t, " *", th.Focused.ErrorIndicator.Value())
}

func TestFormsBuild(t *testing.T) {
	var email, password, title, content, comment string
	var ok bool

	assert.NotNil(t, Login(&email, &password))
	assert.NotNil(t, Signup(&SignupFields{}))
	assert.NotNil(t, Password(&PasswordFields{}))
	assert.NotNil(t, Post(&title, &content))
	assert.NotNil(t, Comment(&comment))
	assert.NotNil(t, Confirm("Delete?", &ok))
}

func TestRequired(t *testing.T) {
	assert.NoError(t, required("password")("x"))
	assert.EqualError(t, required("password")(""), "password is required")
}

func TestOptionalImage(t *testing.T) {
	assert.NoError(t, optionalImage(""))

	dir := t.TempDir()
	gif := filepath.Join(dir, "me.gif")
	require.NoError(t, os.WriteFile(gif, []byte("GIF89a"), 0o600))
	assert.NoError(t, optionalImage(gif))

	txt := filepath.Join(dir, "me.txt")
	require.NoError(t, os.WriteFile(txt, []byte("hi"), 0o600))
	assert.Error(t, optionalImage(txt))
}
