package util

import "encoding/json"

// JSONValue converts v into the maps, slices and scalars produced by encoding/json so
// GraphQL field names follow the json tags, embedded structs included.
func JSONValue(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
