package askwx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultTemplateIsValid(t *testing.T) {
	opts := NewOptions()
	assert.Empty(t, opts.Validate())
	assert.Contains(t, opts.PromptTemplate, "Keep answer under 150 words")
}

func TestValidateTemplate(t *testing.T) {
	tests := []struct {
		name    string
		tmpl    string
		wantErr bool
	}{
		{"ok", "C: {{context}} Q: {{question}}", false},
		{"missing context", "Q: {{question}}", true},
		{"missing question", "C: {{context}}", true},
		{"duplicate question", "{{context}} {{question}} {{question}}", true},
		{"wrong order", "{{question}} {{context}}", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTemplate(tt.tmpl)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCompleteRestoresDefault(t *testing.T) {
	opts := &Options{PromptTemplate: "  "}
	assert.NoError(t, opts.Complete())
	assert.Equal(t, DefaultPromptTemplate, opts.PromptTemplate)
}
