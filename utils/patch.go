package utils

import "encoding/json"

// OptInt distinguishes an omitted JSON field from an explicit null. Set is
// true when the field was present in the payload, even as null.
type OptInt struct {
	Set   bool
	Value *int
}

func (o *OptInt) UnmarshalJSON(data []byte) error {
	o.Set = true
	return json.Unmarshal(data, &o.Value)
}

// OptBool mirrors OptInt for three-valued booleans.
type OptBool struct {
	Set   bool
	Value *bool
}

func (o *OptBool) UnmarshalJSON(data []byte) error {
	o.Set = true
	return json.Unmarshal(data, &o.Value)
}

// OptString mirrors OptInt for nullable ids.
type OptString struct {
	Set   bool
	Value *string
}

func (o *OptString) UnmarshalJSON(data []byte) error {
	o.Set = true
	return json.Unmarshal(data, &o.Value)
}
