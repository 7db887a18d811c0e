// Package wire holds JSON helpers shared by collaborator payload types.
package wire

import (
	"encoding/json"
	"fmt"
)

// Extras returns the members of the JSON object in data whose keys are not
// listed in known. It returns nil when there are none.
func Extras(data []byte, known ...string) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

// Merge marshals v (which must encode as a JSON object) and adds the extra
// members that v does not already define.
func Merge(v any, extra map[string]json.RawMessage) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return data, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("merge extras: %w", err)
	}
	for k, raw := range extra {
		if _, ok := obj[k]; !ok {
			obj[k] = raw
		}
	}
	return json.Marshal(obj)
}
