package calldata

import (
	"encoding/json"

	"github.com/ideationmarket/goapi/domain"
)

// Bind decodes a dispatched call's loosely-typed args into the
// handler's payload struct. Malformed args surface as bad input, the
// dispatch analog of a calldata decoding revert.
func Bind(args interface{}, out interface{}) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return domain.ErrBadParamInput
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return domain.ErrBadParamInput
	}
	return nil
}
