// Package convert supplies small, forgiving conversions from loosely typed
// values, mostly configuration text, into concrete Go types.
package convert

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
)

var (
	// ErrUnknownConverter is returned by Converter for an unrecognized name.
	ErrUnknownConverter = errors.New("unknown converter")
)

// boolStrings are the string spellings AsBool accepts, compared after
// trimming and lowercasing
var boolStrings = map[string]bool{
	"true": true, "yes": true, "y": true, "on": true, "1": true,
	"false": false, "no": false, "n": false, "off": false, "0": false,
}

// AsBool converts v to a bool.  Strings are matched against the usual
// configuration spellings: true/yes/y/on/1 and false/no/n/off/0, ignoring
// case and surrounding whitespace.  Any other type defers to cast.
func AsBool(v interface{}) (bool, error) {
	if s, ok := v.(string); ok {
		if b, ok := boolStrings[strings.ToLower(strings.TrimSpace(s))]; ok {
			return b, nil
		}

		return false, fmt.Errorf("could not convert %q to bool", s)
	}

	return cast.ToBoolE(v)
}

// AsStrings converts v to a slice of strings.  A string value is split on sep,
// or on whitespace when sep is empty; items are trimmed and empty items are
// dropped.  Any other type defers to cast.
func AsStrings(v interface{}, sep string) ([]string, error) {
	s, ok := v.(string)
	if !ok {
		return cast.ToStringSliceE(v)
	}

	if len(sep) == 0 {
		return strings.Fields(s), nil
	}

	var items []string
	for _, item := range strings.Split(s, sep) {
		if item = strings.TrimSpace(item); len(item) > 0 {
			items = append(items, item)
		}
	}

	return items, nil
}

// AsInts converts v to a slice of ints, splitting strings as AsStrings does
// and converting each item.
func AsInts(v interface{}, sep string) ([]int, error) {
	if s, ok := v.(string); ok {
		items, err := AsStrings(s, sep)
		if err != nil {
			return nil, err
		}

		ints := make([]int, 0, len(items))
		for _, item := range items {
			i, err := cast.ToIntE(item)
			if err != nil {
				return nil, err
			}

			ints = append(ints, i)
		}

		return ints, nil
	}

	return cast.ToIntSliceE(v)
}

// AsDurations converts v to a slice of durations, splitting strings as
// AsStrings does and converting each item.
func AsDurations(v interface{}, sep string) ([]time.Duration, error) {
	items, err := AsStrings(v, sep)
	if err != nil {
		return nil, err
	}

	durations := make([]time.Duration, 0, len(items))
	for _, item := range items {
		d, err := cast.ToDurationE(item)
		if err != nil {
			return nil, err
		}

		durations = append(durations, d)
	}

	return durations, nil
}

// converters is the registry behind Converter.  The named converters split
// strings on whitespace.
var converters = map[string]func(interface{}) (interface{}, error){
	"bool": func(v interface{}) (interface{}, error) {
		return AsBool(v)
	},
	"strings": func(v interface{}) (interface{}, error) {
		return AsStrings(v, "")
	},
	"ints": func(v interface{}) (interface{}, error) {
		return AsInts(v, "")
	},
	"durations": func(v interface{}) (interface{}, error) {
		return AsDurations(v, "")
	},
}

// Converter looks up a conversion function by name, for configuration that
// names its own value types.
func Converter(name string) (func(interface{}) (interface{}, error), error) {
	if c, ok := converters[name]; ok {
		return c, nil
	}

	return nil, ErrUnknownConverter
}
