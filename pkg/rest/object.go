package rest

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

// RawFields holds object members that have no field in the Go type.
type RawFields map[string]jsoniter.RawMessage

// decodeObject fills known (a pointer to a struct without custom JSON methods)
// and returns every member of data that known does not declare.
func decodeObject(data []byte, known any) (RawFields, error) {
	if err := json.Unmarshal(data, known); err != nil {
		return nil, fmt.Errorf("json.Unmarshal(known): %w", err)
	}

	var all RawFields

	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("json.Unmarshal(all): %w", err)
	}

	declared, err := memberNames(known)
	if err != nil {
		return nil, err
	}

	for name := range declared {
		delete(all, name)
	}

	if len(all) == 0 {
		return nil, nil
	}

	return all, nil
}

// encodeObject marshals known and adds the extra members it does not declare.
func encodeObject(known any, extra RawFields) ([]byte, error) {
	b, err := json.Marshal(known)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal(known): %w", err)
	}

	if len(extra) == 0 {
		return b, nil
	}

	var merged RawFields

	if err = json.Unmarshal(b, &merged); err != nil {
		return nil, fmt.Errorf("json.Unmarshal(known): %w", err)
	}

	for name, raw := range extra {
		if _, ok := merged[name]; !ok {
			merged[name] = raw
		}
	}

	b, err = json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal(merged): %w", err)
	}

	return b, nil
}

func memberNames(known any) (map[string]struct{}, error) {
	b, err := json.Marshal(known)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal(known): %w", err)
	}

	var members RawFields

	if err = json.Unmarshal(b, &members); err != nil {
		return nil, fmt.Errorf("json.Unmarshal(members): %w", err)
	}

	names := make(map[string]struct{}, len(members))
	for name := range members {
		names[name] = struct{}{}
	}

	return names, nil
}
