// Package iam provides IBM Cloud IAM credential options.
package iam

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/askwx/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// DefaultTokenURL is the public IBM Cloud IAM token endpoint.
const DefaultTokenURL = "https://iam.cloud.ibm.com/identity/token"

// Options contains the API key and token exchange settings shared by the
// search and generation clients.
type Options struct {
	// APIKey is exchanged for short-lived bearer tokens.
	APIKey string `json:"api-key" mapstructure:"api-key"`

	// TokenURL is the IAM token endpoint.
	TokenURL string `json:"token-url" mapstructure:"token-url"`

	// Timeout bounds a single token request.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// ReuseToken lets the generator reuse a token until it nears expiry.
	// Off by default: every question performs its own token exchange.
	ReuseToken bool `json:"reuse-token" mapstructure:"reuse-token"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		TokenURL: DefaultTokenURL,
		Timeout:  15 * time.Second,
	}
}

// AddFlags adds flags for IAM options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "iam."
	fs.StringVar(&o.APIKey, p+"api-key", o.APIKey, "IBM Cloud API key. Falls back to $APIKEY.")
	fs.StringVar(&o.TokenURL, p+"token-url", o.TokenURL, "IAM token endpoint.")
	fs.DurationVar(&o.Timeout, p+"timeout", o.Timeout, "Timeout of one token request.")
	fs.BoolVar(&o.ReuseToken, p+"reuse-token", o.ReuseToken, "Reuse generation tokens until they expire instead of fetching one per question.")
}

// Complete fills the API key from the legacy environment variable.
func (o *Options) Complete() error {
	options.FromEnv(&o.APIKey, "APIKEY")
	if o.TokenURL == "" {
		o.TokenURL = DefaultTokenURL
	}
	return nil
}

// Validate validates the IAM options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.APIKey == "" {
		errs = append(errs, fmt.Errorf("iam.api-key is required (or set APIKEY)"))
	}
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("iam.timeout must be positive"))
	}
	return errs
}
