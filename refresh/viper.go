package refresh

import (
	"github.com/spf13/viper"
)

const (
	// RefreshKey is the Viper subkey under which refresh options are expected.
	// FromViper *does not* assume this key; use Sub to descend into it.
	RefreshKey = "refresh"
)

// Options holds the externally configurable caching behavior.
type Options struct {
	// Period is how long fetched values stay fresh.  The zero value is
	// Forever.  Configuration files may use "forever", "never", any duration
	// string, or a bare number of seconds.
	Period Period `json:"period"`
}

// Sub returns the standard child Viper, using RefreshKey, for this package.
// If passed nil, this function returns nil.
func Sub(v *viper.Viper) *viper.Viper {
	if v != nil {
		return v.Sub(RefreshKey)
	}

	return nil
}

// FromViper produces an Options from a (possibly nil) Viper instance, parsing
// Period fields through DecodeHook.
func FromViper(v *viper.Viper) (*Options, error) {
	o := new(Options)
	if v != nil {
		if err := v.Unmarshal(o, viper.DecodeHook(DecodeHook())); err != nil {
			return nil, err
		}
	}

	return o, nil
}

// NewValue builds a Source for the configured period, as with Value.
func (o *Options) NewValue(source Source, options ...Option) (Source, error) {
	period := Forever
	if o != nil {
		period = o.Period
	}

	return Value(source, period, options...)
}
