package render

import (
	"encoding/json"

	jsonpatch "github.com/evanphx/json-patch"

	"github.com/mcncl/gobref/internal/errors"
)

// ApplyPatch applies an RFC 6902 JSON patch to doc and returns the result in
// native form.
func ApplyPatch(doc any, patchJSON []byte) (any, error) {
	ops, err := jsonpatch.DecodePatch(patchJSON)
	if err != nil {
		return nil, errors.NewRenderError("invalid JSON patch", err)
	}
	d, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.NewRenderError("failed to encode document for patching", err)
	}
	out, err := ops.Apply(d)
	if err != nil {
		return nil, errors.NewRenderError("failed to apply JSON patch", err)
	}
	result, err := DecodeJSON(out)
	if err != nil {
		return nil, errors.NewRenderError("failed to decode patched document", err)
	}
	return result, nil
}
