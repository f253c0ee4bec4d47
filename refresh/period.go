package refresh

import (
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Period describes how long a fetched value stays fresh.  Two reserved values
// govern caching behavior: Forever pins the first fetched value, and any
// negative period disables caching entirely.
type Period time.Duration

const (
	// Forever indicates that a fetched value never expires
	Forever Period = 0

	// Never indicates that values must not be cached at all.  Any negative
	// period is interpreted as this value.
	Never Period = -1

	foreverValue = "forever"
	neverValue   = "never"
)

// String returns a human-readable form of this period.
func (p Period) String() string {
	if p == Forever {
		return foreverValue
	} else if p < 0 {
		return neverValue
	}

	return time.Duration(p).String()
}

// Next returns the moment, relative to a given base time, at which
// the period will have elapsed.
func (p Period) Next(base time.Time) time.Time {
	return base.Add(time.Duration(p))
}

// MarshalJSON emits the custom JSON format for a period.
func (p Period) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

// UnmarshalJSON parses the custom JSON format for a period.  In addition to
// the reserved strings "forever" and "never" and anything accepted by
// time.ParseDuration, raw integers are interpreted as seconds.
func (p *Period) UnmarshalJSON(data []byte) error {
	var value string
	if len(data) > 1 && data[0] == '"' {
		value = string(data[1 : len(data)-1])
	} else {
		value = string(data)
	}

	parsed, err := parsePeriod(value)
	if err != nil {
		return err
	}

	*p = parsed
	return nil
}

func parsePeriod(value string) (Period, error) {
	switch value {
	case foreverValue:
		return Forever, nil
	case neverValue:
		return Never, nil
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return Period(duration), nil
	}

	seconds, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return Forever, fmt.Errorf("invalid period %q: %v", value, err)
	}

	return fromSeconds(seconds), nil
}

func fromSeconds(seconds int64) Period {
	if seconds < 0 {
		return Never
	} else if seconds == 0 {
		return Forever
	}

	return Period(time.Second * time.Duration(seconds))
}

// DecodeHook returns a mapstructure hook that parses Period fields from the
// string and integer forms accepted by UnmarshalJSON.  Use it with
// viper.DecodeHook when unmarshaling configuration containing periods.
func DecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(Period(0)) {
			return data, nil
		}

		switch from.Kind() {
		case reflect.String:
			return parsePeriod(data.(string))

		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return fromSeconds(reflect.ValueOf(data).Int()), nil

		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return fromSeconds(int64(reflect.ValueOf(data).Uint())), nil

		case reflect.Float32, reflect.Float64:
			return fromSeconds(int64(reflect.ValueOf(data).Float())), nil

		default:
			return data, nil
		}
	}
}
