package uri

import (
	"reflect"
	"sort"
	"strings"
)

// Params is a query parameter map. Slice values expand into repeated pairs.
type Params map[string]any

// BuildQueryString renders params with the default encoder.
func BuildQueryString(params Params) string {
	return NewEncoder(nil).BuildQueryString(params)
}

// BuildQueryString encodes every key and value, joins each pair with "=",
// sorts the pair strings and joins them with "&". Sorting is global, so
// {"a": [2, 1]} renders as "a=1&a=2".
func (e *Encoder) BuildQueryString(params Params) string {
	pairs := make([]string, 0, len(params))
	for k, v := range params {
		pairs = e.appendPairs(pairs, k, v)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "&")
}

func (e *Encoder) appendPairs(pairs []string, key string, value any) []string {
	if value != nil {
		rv := reflect.ValueOf(value)
		if (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && rv.Type().Elem().Kind() != reflect.Uint8 {
			for i := 0; i < rv.Len(); i++ {
				pairs = e.appendPairs(pairs, key, rv.Index(i).Interface())
			}
			return pairs
		}
	}
	return append(pairs, e.Encode(key)+"="+e.Encode(value))
}
