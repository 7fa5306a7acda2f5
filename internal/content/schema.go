package content

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/abhisek/adaptutor/internal/apperr"
)

const catalogSchemaURL = "schema://adaptutor/catalog.json"

// catalogSchema describes the catalog document. Semantic rules that JSON
// Schema cannot express (level names, variant coverage) are checked after
// decoding.
const catalogSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["format", "modules"],
  "additionalProperties": false,
  "properties": {
    "format": {"type": "string", "pattern": "^v[0-9]+\\.[0-9]+\\.[0-9]+$"},
    "modules": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["id", "title", "variants", "quiz"],
        "additionalProperties": false,
        "properties": {
          "id": {"type": "string", "pattern": "^[a-z0-9_\\-]+$"},
          "title": {"type": "string", "minLength": 1},
          "body": {"type": "string"},
          "variants": {
            "type": "object",
            "minProperties": 1,
            "propertyNames": {"enum": ["beginner", "intermediate", "advanced", "default"]},
            "additionalProperties": {
              "type": "object",
              "required": ["body"],
              "additionalProperties": false,
              "properties": {
                "body": {"type": "string", "minLength": 1},
                "estimated_time": {"type": "string"},
                "formats": {
                  "type": "object",
                  "propertyNames": {"enum": ["video", "text", "visual", "activity"]},
                  "additionalProperties": {"type": "string"}
                }
              }
            }
          },
          "sections": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["topic", "title"],
              "additionalProperties": false,
              "properties": {
                "topic": {"type": "string", "minLength": 1},
                "title": {"type": "string", "minLength": 1},
                "body": {"type": "string"}
              }
            }
          },
          "quiz": {
            "type": "array",
            "minItems": 1,
            "items": {
              "type": "object",
              "required": ["id", "answer", "weight"],
              "additionalProperties": false,
              "properties": {
                "id": {"type": "string", "minLength": 1},
                "prompt": {"type": "string"},
                "answer": {"type": "string", "minLength": 1},
                "accept": {"type": "array", "items": {"type": "string"}},
                "weight": {"type": "number", "exclusiveMinimum": 0},
                "topic": {"type": "string"},
                "critical": {"type": "boolean"}
              }
            }
          }
        }
      }
    }
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func getCompiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		var def any
		if err := json.Unmarshal([]byte(catalogSchema), &def); err != nil {
			schemaErr = fmt.Errorf("parse catalog schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(catalogSchemaURL, def); err != nil {
			schemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(catalogSchemaURL)
	})
	return compiledSchema, schemaErr
}

// validateCatalogSchema checks raw catalog JSON against the schema.
func validateCatalogSchema(raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return apperr.Invalid("catalog", "invalid JSON: %v", err)
	}
	compiled, err := getCompiledSchema()
	if err != nil {
		return fmt.Errorf("compile catalog schema: %w", err)
	}
	if err := compiled.Validate(parsed); err != nil {
		return apperr.Invalid("catalog", "schema validation failed: %v", err)
	}
	return nil
}
