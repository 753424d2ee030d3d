// Package askwx provides question answering configuration options.
package askwx

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/kart-io/askwx/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Template placeholders. Each must appear exactly once, context first.
const (
	ContextPlaceholder  = "{{context}}"
	QuestionPlaceholder = "{{question}}"
)

// DefaultPromptTemplate wraps the retrieved passages in an "Article" block and
// instructs the model to answer briefly from those passages only.
const DefaultPromptTemplate = "\nArticle:\n###\n" + ContextPlaceholder + "\n###\n\n" +
	"[INST] <<SYS>>\n" +
	"You are a helpful, respectful and honest assistant. Always answer as helpfully as possible, while being safe. " +
	"Be brief in your answers. Your answers should not include any harmful, unethical, racist, sexist, toxic, dangerous, or illegal content. " +
	"Please ensure that your responses are socially unbiased and positive in nature.\n\n" +
	"If a question does not make any sense, or is not factually coherent, explain why instead of answering something not correct. " +
	"If you don’t know the answer to a question, please don’t share false information.\n" +
	"<</SYS>>\n\n" +
	"Generate the next agent response by answering the question. You are provided several documents with titles so find answer from those documents and do not reference documents in answer. " +
	"If you cannot base your answer on the given documents, please state that you do not have an answer. " +
	"Keep answer under 150 words and in paragraph format\n\n" +
	"Question: " + QuestionPlaceholder + "\nAnswer:\n"

// DefaultDocumentSeparator separates documents inside the context block.
const DefaultDocumentSeparator = "\n\n"

// Options contains the prompt configuration.
type Options struct {
	// PromptTemplate is filled once per question.
	PromptTemplate string `json:"prompt-template" mapstructure:"prompt-template"`

	// DocumentSeparator joins per-document context strings.
	DocumentSeparator string `json:"document-separator" mapstructure:"document-separator"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		PromptTemplate:    DefaultPromptTemplate,
		DocumentSeparator: DefaultDocumentSeparator,
	}
}

// AddFlags adds flags for prompt options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "askwx."
	fs.StringVar(&o.PromptTemplate, p+"prompt-template", o.PromptTemplate,
		"Prompt template with one "+ContextPlaceholder+" followed by one "+QuestionPlaceholder+" placeholder.")
	fs.StringVar(&o.DocumentSeparator, p+"document-separator", o.DocumentSeparator, "Separator placed between documents in the context block.")
}

// Validate validates the prompt options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}
	if err := ValidateTemplate(o.PromptTemplate); err != nil {
		return []error{err}
	}
	return nil
}

// Complete completes the prompt options with defaults.
func (o *Options) Complete() error {
	if strings.TrimSpace(o.PromptTemplate) == "" {
		o.PromptTemplate = DefaultPromptTemplate
	}
	return nil
}

// ValidateTemplate checks that tmpl has exactly one context placeholder
// followed by exactly one question placeholder.
func ValidateTemplate(tmpl string) error {
	if n := strings.Count(tmpl, ContextPlaceholder); n != 1 {
		return fmt.Errorf("askwx.prompt-template must contain %s exactly once, found %d", ContextPlaceholder, n)
	}
	if n := strings.Count(tmpl, QuestionPlaceholder); n != 1 {
		return fmt.Errorf("askwx.prompt-template must contain %s exactly once, found %d", QuestionPlaceholder, n)
	}
	if strings.Index(tmpl, ContextPlaceholder) > strings.Index(tmpl, QuestionPlaceholder) {
		return fmt.Errorf("askwx.prompt-template must place %s before %s", ContextPlaceholder, QuestionPlaceholder)
	}
	return nil
}
