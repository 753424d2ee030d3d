// Package discovery provides Watson Discovery search client options.
package discovery

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/askwx/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// DefaultVersion is the Discovery v2 API version date.
const DefaultVersion = "2020-08-30"

// Options contains the Discovery project and query settings.
type Options struct {
	// ServiceURL is the instance URL, e.g. https://api.us-south.discovery.watson.cloud.ibm.com/instances/<id>.
	ServiceURL string `json:"service-url" mapstructure:"service-url"`

	// ProjectID is the Discovery project to query.
	ProjectID string `json:"project-id" mapstructure:"project-id"`

	// Version is the API version query parameter.
	Version string `json:"version" mapstructure:"version"`

	// Timeout bounds a single query call.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// Count is the number of documents returned.
	Count int `json:"count" mapstructure:"count"`

	// Passages 段落提取配置
	Passages *PassageOptions `json:"passages" mapstructure:"passages"`
}

// PassageOptions mirrors the "passages" block of a Discovery query.
type PassageOptions struct {
	PerDocument    bool `json:"per-document" mapstructure:"per-document"`
	FindAnswers    bool `json:"find-answers" mapstructure:"find-answers"`
	MaxPerDocument int  `json:"max-per-document" mapstructure:"max-per-document"`
	Characters     int  `json:"characters" mapstructure:"characters"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		Version: DefaultVersion,
		Timeout: 30 * time.Second,
		Count:   3,
		Passages: &PassageOptions{
			PerDocument:    true,
			FindAnswers:    true,
			MaxPerDocument: 1,
			Characters:     500,
		},
	}
}

// AddFlags adds flags for Discovery options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "discovery."
	fs.StringVar(&o.ServiceURL, p+"service-url", o.ServiceURL, "Watson Discovery service URL. Falls back to $SERVICE_URL.")
	fs.StringVar(&o.ProjectID, p+"project-id", o.ProjectID, "Watson Discovery project ID. Falls back to $DISCOVERY_PROJECTID.")
	fs.StringVar(&o.Version, p+"version", o.Version, "Watson Discovery API version date.")
	fs.DurationVar(&o.Timeout, p+"timeout", o.Timeout, "Timeout of one query call.")
	fs.IntVar(&o.Count, p+"count", o.Count, "Number of documents to retrieve.")

	if o.Passages == nil {
		o.Passages = NewOptions().Passages
	}
	fs.BoolVar(&o.Passages.PerDocument, p+"passages.per-document", o.Passages.PerDocument, "Group passages per document.")
	fs.BoolVar(&o.Passages.FindAnswers, p+"passages.find-answers", o.Passages.FindAnswers, "Ask Discovery to locate answers inside passages.")
	fs.IntVar(&o.Passages.MaxPerDocument, p+"passages.max-per-document", o.Passages.MaxPerDocument, "Maximum passages per document.")
	fs.IntVar(&o.Passages.Characters, p+"passages.characters", o.Passages.Characters, "Approximate passage length in characters.")
}

// Complete fills empty fields from the legacy environment variables.
func (o *Options) Complete() error {
	options.FromEnv(&o.ServiceURL, "SERVICE_URL")
	options.FromEnv(&o.ProjectID, "DISCOVERY_PROJECTID")
	o.ServiceURL = strings.TrimRight(o.ServiceURL, "/")
	if o.Version == "" {
		o.Version = DefaultVersion
	}
	if o.Passages == nil {
		o.Passages = NewOptions().Passages
	}
	return nil
}

// Validate validates the Discovery options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.ServiceURL == "" {
		errs = append(errs, fmt.Errorf("discovery.service-url is required (or set SERVICE_URL)"))
	} else if u, err := url.Parse(o.ServiceURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("discovery.service-url %q is not an absolute URL", o.ServiceURL))
	}
	if o.ProjectID == "" {
		errs = append(errs, fmt.Errorf("discovery.project-id is required (or set DISCOVERY_PROJECTID)"))
	}
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("discovery.timeout must be positive"))
	}
	if o.Count <= 0 {
		errs = append(errs, fmt.Errorf("discovery.count must be positive"))
	}
	if o.Passages != nil {
		if o.Passages.MaxPerDocument <= 0 {
			errs = append(errs, fmt.Errorf("discovery.passages.max-per-document must be positive"))
		}
		if o.Passages.Characters <= 0 {
			errs = append(errs, fmt.Errorf("discovery.passages.characters must be positive"))
		}
	}
	return errs
}
