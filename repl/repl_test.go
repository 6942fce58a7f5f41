package repl

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrapscript/scrapscript-go/builtin"
	"github.com/scrapscript/scrapscript-go/eval"
)

func TestEvalLine_PrintsResult(t *testing.T) {
	r := New("", "v0", "a", "", "MIT", ">>> ")
	var buf bytes.Buffer
	env := builtin.Stdlib()
	next := r.evalLine(&buf, eval.New(), env, "1 + 2 * 3")
	assert.Same(t, env, next, "a non-binding line must not change the environment")
	assert.Equal(t, "7\n", buf.String())
}

func TestEvalLine_BindingExtendsSessionEnv(t *testing.T) {
	r := New("", "v0", "a", "", "MIT", ">>> ")
	var buf bytes.Buffer
	env := builtin.Stdlib()
	next := r.evalLine(&buf, eval.New(), env, "x = 5")
	require.NotSame(t, env, next)

	buf.Reset()
	next2 := r.evalLine(&buf, eval.New(), next, "x + 1")
	assert.Equal(t, "6\n", buf.String())
	assert.Same(t, next, next2)
}

func TestEvalLine_ParseErrorLeavesEnvUnchanged(t *testing.T) {
	r := New("", "v0", "a", "", "MIT", ">>> ")
	var buf bytes.Buffer
	env := builtin.Stdlib()
	next := r.evalLine(&buf, eval.New(), env, "(1")
	assert.Same(t, env, next)
	assert.True(t, strings.Contains(buf.String(), "Error") || buf.Len() > 0)
}
