package oracle

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// outlineSchema is the canonical JSON Schema the oracle's fenced JSON
// block must validate against. It is quoted in the repair prompt and
// checked locally before the outline is trusted; it is not sent as a
// response_format.
const outlineSchema = `{
	"type": "object",
	"properties": {
		"headers": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"text": {"type": "string"},
					"number": {"type": ["string", "null"]},
					"level": {"type": "integer", "minimum": 1}
				},
				"required": ["text", "level"],
				"additionalProperties": false
			}
		}
	},
	"required": ["headers"],
	"additionalProperties": false
}`

var compiledOutlineSchema *jsonschema.Schema

func init() {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("outline.json", bytes.NewReader([]byte(outlineSchema))); err != nil {
		panic(fmt.Sprintf("oracle: invalid embedded outline schema: %v", err))
	}
	schema, err := compiler.Compile("outline.json")
	if err != nil {
		panic(fmt.Sprintf("oracle: compile embedded outline schema: %v", err))
	}
	compiledOutlineSchema = schema
}

// validateOutline checks a parsed outline document against outlineSchema.
func validateOutline(doc json.RawMessage) error {
	var v any
	if err := json.Unmarshal(doc, &v); err != nil {
		return fmt.Errorf("oracle: decode outline for validation: %w", err)
	}
	if err := compiledOutlineSchema.Validate(v); err != nil {
		return fmt.Errorf("oracle: outline failed schema validation: %w", err)
	}
	return nil
}

// parseOutline extracts the fenced JSON block from raw LLM content,
// validates it against outlineSchema, and decodes it into rawOutline.
// Any failure here is a schema/parse failure, not a transport failure —
// callers should treat it as ErrOutlineParse in strict mode, or as an
// empty outline plus fallback_triggered otherwise.
func parseOutline(content string) (rawOutline, error) {
	raw, err := parseStructuredJSON(content)
	if err != nil {
		return rawOutline{}, fmt.Errorf("oracle: %w", err)
	}
	if err := validateOutline(raw); err != nil {
		return rawOutline{}, err
	}
	var out rawOutline
	if err := json.Unmarshal(raw, &out); err != nil {
		return rawOutline{}, fmt.Errorf("oracle: decode outline: %w", err)
	}
	return out, nil
}
