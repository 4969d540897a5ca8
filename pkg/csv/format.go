package csv

import (
	"fmt"
	"reflect"
	"strconv"
	"time"
)

// formatValue returns the text written for v. The second result is true
// for nil values and nil pointers, which are written as the null marker.
func formatValue(v any) (string, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return "", true
	}

	switch x := v.(type) {
	case nil:
		return "", true
	case string:
		return x, false
	case []byte:
		return string(x), false
	case bool:
		return strconv.FormatBool(x), false
	case int:
		return strconv.Itoa(x), false
	case int8:
		return strconv.FormatInt(int64(x), 10), false
	case int16:
		return strconv.FormatInt(int64(x), 10), false
	case int32:
		return strconv.FormatInt(int64(x), 10), false
	case int64:
		return strconv.FormatInt(x, 10), false
	case uint:
		return strconv.FormatUint(uint64(x), 10), false
	case uint8:
		return strconv.FormatUint(uint64(x), 10), false
	case uint16:
		return strconv.FormatUint(uint64(x), 10), false
	case uint32:
		return strconv.FormatUint(uint64(x), 10), false
	case uint64:
		return strconv.FormatUint(x, 10), false
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), false
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), false
	case time.Time:
		return x.Format(time.RFC3339Nano), false
	case fmt.Stringer:
		return x.String(), false
	case error:
		return x.Error(), false
	}

	if rv.Kind() == reflect.Pointer {
		return formatValue(rv.Elem().Interface())
	}
	return fmt.Sprint(v), false
}
