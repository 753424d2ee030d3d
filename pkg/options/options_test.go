package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoin(t *testing.T) {
	assert.Equal(t, "", Join())
	assert.Equal(t, "a.", Join("a"))
	assert.Equal(t, "a.b.", Join("a", "b"))
}

func TestFromEnv(t *testing.T) {
	t.Setenv("ASKWX_TEST_PRIMARY", "")
	t.Setenv("ASKWX_TEST_LEGACY", "legacy")

	var v string
	FromEnv(&v, "ASKWX_TEST_PRIMARY", "ASKWX_TEST_LEGACY")
	assert.Equal(t, "legacy", v)

	v = "explicit"
	FromEnv(&v, "ASKWX_TEST_LEGACY")
	assert.Equal(t, "explicit", v)
}
