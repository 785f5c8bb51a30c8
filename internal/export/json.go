package export

import (
	"bytes"
	"encoding/json"

	"github.com/joseph-ayodele/fiscal-extract/internal/schema"
)

// JSON renders the record as indented UTF-8 JSON. Non-ASCII text is kept
// as-is and floats keep full precision.
func JSON(rec *schema.DocumentRecord) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(rec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
