package httputil

import (
	"bytes"
	"encoding/json"
)

// OptionalString distinguishes "field absent" from "field explicitly
// null" in a JSON body, which *string alone cannot. Folder moves need
// the full tri-state: parent_id omitted leaves the folder where it is,
// parent_id null moves it to the event root, and a string value moves
// it under that folder.
type OptionalString struct {
	Present bool
	Value   *string
}

// UnmarshalJSON records that the field appeared at all, then decodes
// null or a string value.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true

	if string(bytes.TrimSpace(data)) == "null" {
		o.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}
