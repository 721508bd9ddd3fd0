package value

import (
	"maps"
	"slices"
)

// RawFields keeps JSON object members the console does not model, keyed by
// member name, so they can be sent back untouched.
type RawFields map[string][]byte

func (f RawFields) Clone() RawFields {
	if f == nil {
		return nil
	}

	clone := make(RawFields, len(f))

	for k, v := range f {
		clone[k] = append([]byte(nil), v...)
	}

	return clone
}

func (f RawFields) Keys() []string {
	return slices.Sorted(maps.Keys(f))
}
