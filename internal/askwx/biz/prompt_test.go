package biz

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	askwxopts "github.com/kart-io/askwx/pkg/options/askwx"
)

func TestBuildDefaultTemplate(t *testing.T) {
	b := NewPromptBuilder(nil)
	cc := CleanedContext{"Paris is the capital of France."}
	q := "What is the capital of France?"

	p := b.Build(cc, q)
	assert.Equal(t, p, b.Build(cc, q), "building must be deterministic")
	assert.Contains(t, p, "Paris is the capital of France.")
	assert.Contains(t, p, "Question: "+q+"\nAnswer:")
	assert.NotContains(t, p, askwxopts.ContextPlaceholder)
	assert.NotContains(t, p, askwxopts.QuestionPlaceholder)
	assert.Less(t, strings.Index(p, cc[0]), strings.Index(p, q))
}

func TestBuildJoinsDocuments(t *testing.T) {
	b := NewPromptBuilder(&askwxopts.Options{
		PromptTemplate:    "C=" + askwxopts.ContextPlaceholder + "|Q=" + askwxopts.QuestionPlaceholder,
		DocumentSeparator: "\n\n",
	})

	assert.Equal(t, "C=a\n\nb|Q=why", b.Build(CleanedContext{"a", "b"}, "why"))
	assert.Equal(t, "C=|Q=", b.Build(CleanedContext{}, ""))
}

func TestBuildDoesNotReexpandPlaceholders(t *testing.T) {
	b := NewPromptBuilder(&askwxopts.Options{
		PromptTemplate:    askwxopts.ContextPlaceholder + "/" + askwxopts.QuestionPlaceholder,
		DocumentSeparator: "\n",
	})

	q := "what is " + askwxopts.ContextPlaceholder + "?"
	got := b.Build(CleanedContext{"doc mentions " + askwxopts.QuestionPlaceholder}, q)
	assert.Equal(t, "doc mentions "+askwxopts.QuestionPlaceholder+"/"+q, got)
}
