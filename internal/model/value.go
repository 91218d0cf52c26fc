package model

import (
	"fmt"
	"strconv"
)

// ValueKind classifies what an entry's logged value means for streak and
// points purposes.
type ValueKind string

const (
	// ValueFull is an exact boolean true: the only kind that grows a streak
	// and earns multiplied points.
	ValueFull ValueKind = "full"
	// ValueMiss is an explicit boolean false: the user logged a non-completion.
	ValueMiss ValueKind = "miss"
	// ValuePartial covers everything else: the "showUp" sentinel, numbers,
	// and free-form strings. Keeps a streak alive without growing it.
	ValuePartial ValueKind = "partial"
)

// ShowUpSentinel is the wire value clients send for a minimal-effort check-in.
const ShowUpSentinel = "showUp"

// EntryValue is the tagged form of the wire union true|false|"showUp"|number|string.
// The union is classified exactly once, at the boundary, so every downstream
// consumer works from the same rules.
type EntryValue struct {
	Kind    ValueKind `json:"kind"`
	Payload string    `json:"payload,omitempty"`
}

// ParseEntryValue classifies a decoded JSON value. Only boolean true counts as
// a full completion; boolean false is an explicit miss; numbers, strings and
// the "showUp" sentinel are all partial effort.
func ParseEntryValue(raw any) (EntryValue, error) {
	switch v := raw.(type) {
	case bool:
		if v {
			return EntryValue{Kind: ValueFull}, nil
		}
		return EntryValue{Kind: ValueMiss}, nil
	case string:
		return EntryValue{Kind: ValuePartial, Payload: v}, nil
	case float64:
		return EntryValue{Kind: ValuePartial, Payload: strconv.FormatFloat(v, 'f', -1, 64)}, nil
	case int:
		return EntryValue{Kind: ValuePartial, Payload: strconv.Itoa(v)}, nil
	case nil:
		return EntryValue{}, fmt.Errorf("value is required")
	default:
		return EntryValue{}, fmt.Errorf("unsupported value type %T", raw)
	}
}

// EntryValueFromStored rebuilds the tagged value from its persisted columns.
func EntryValueFromStored(kind, payload string) EntryValue {
	return EntryValue{Kind: ValueKind(kind), Payload: payload}
}
