package httputil

import (
	"bytes"
	"encoding/json"
)

// OptionalString distinguishes an absent JSON member from an explicit null
// in merge-patch bodies (RFC 7396). A plain *string collapses the two.
//
//	{}                  -> Present=false
//	{"field": null}     -> Present=true, Value=nil
//	{"field": "text"}   -> Present=true, Value=&"text"
type OptionalString struct {
	Present bool
	Value   *string
}

// UnmarshalJSON only runs when the member exists, which is what sets Present
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true
	o.Value = nil

	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}
