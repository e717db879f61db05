package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	assert.Equal(t, "Handle with care", Text("  <b>Handle</b>   with care "))
	assert.Equal(t, "a alert(1) b", StripHTML("a &lt;script&gt;alert(1)&lt;/script&gt; b"))
	assert.Equal(t, "line one\nline two", Text("line one\nline two"))
}

func TestLinesDropsEmpty(t *testing.T) {
	got := Lines([]string{" Subject to carrier approval ", "<br>", ""})
	assert.Equal(t, []string{"Subject to carrier approval"}, got)
}
