package config

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

var durationType = reflect.TypeOf(time.Duration(0))

// decodeHooks is the viper decoder chain. Numbers without a unit in duration fields are seconds,
// so retry_base_delay: 1.5 and RESUME_TAILOR_LLM_TIMEOUT=60 both work alongside "250ms".
func decodeHooks() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		secondsToDurationHook,
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
}

func secondsToDurationHook(from, to reflect.Type, data any) (any, error) {
	if to != durationType || from == durationType {
		return data, nil
	}

	v := reflect.ValueOf(data)
	switch v.Kind() {
	case reflect.String:
		s := strings.TrimSpace(v.String())
		secs, err := strconv.ParseFloat(s, 64)
		if err != nil {
			d, err := time.ParseDuration(s)
			if err != nil {
				return nil, fmt.Errorf("invalid duration %q: use seconds or a unit such as 500ms", s)
			}
			return d, nil
		}
		return seconds(secs)
	case reflect.Float32, reflect.Float64:
		return seconds(v.Float())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return seconds(float64(v.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return seconds(float64(v.Uint()))
	}
	return data, nil
}

func seconds(secs float64) (time.Duration, error) {
	if math.IsNaN(secs) || math.IsInf(secs, 0) || math.Abs(secs) > math.MaxInt64/float64(time.Second) {
		return 0, fmt.Errorf("duration %v seconds is out of range", secs)
	}
	return time.Duration(math.Round(secs * float64(time.Second))), nil
}
