package gather

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// fileAnnotationSchema describes one changed-file record as written by the
// annotation pipeline. Tokens are [offset, kind, text] triples.
const fileAnnotationSchema = `{
  "type": "object",
  "required": ["language", "type", "purpose"],
  "properties": {
    "language": {"type": "string"},
    "type": {"type": "string"},
    "purpose": {"type": "string"},
    "+": {"$ref": "#/definitions/lines"},
    "-": {"$ref": "#/definitions/lines"}
  },
  "definitions": {
    "lines": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "type", "purpose", "tokens"],
        "properties": {
          "id": {"type": "integer", "minimum": 0},
          "type": {"type": "string"},
          "purpose": {"type": "string"},
          "tokens": {
            "type": "array",
            "items": {
              "type": "array",
              "minItems": 3,
              "maxItems": 3,
              "items": [
                {"type": "integer", "minimum": 0},
                {"type": "string"},
                {"type": "string"}
              ]
            }
          }
        }
      }
    }
  }
}`

var fileSchema = gojsonschema.NewStringLoader(fileAnnotationSchema)

// ValidateDocument checks every changed-file record of one annotation
// document against the annotation schema. Violations are collected into a
// single error naming each offending file.
func ValidateDocument(name string, doc map[string]any, format Format) error {
	var violations []string

	for path, entry := range fileEntries(name, doc, format) {
		result, err := gojsonschema.Validate(fileSchema, gojsonschema.NewGoLoader(entry))
		if err != nil {
			return fmt.Errorf("validating %s: %w", name, err)
		}

		for _, desc := range result.Errors() {
			violations = append(violations, fmt.Sprintf("%s: %s", path, desc))
		}
	}

	if len(violations) > 0 {
		return fmt.Errorf("document %s violates annotation schema:\n  %s",
			name, strings.Join(violations, "\n  "))
	}

	return nil
}
