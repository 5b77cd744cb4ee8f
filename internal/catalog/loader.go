package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"tagdesk/internal/common/errors"
	"tagdesk/internal/common/logger"

	"github.com/xeipuuv/gojsonschema"
)

// definitionSchema validates catalog payloads before they can replace the
// active catalog. Kept strict: a malformed hot update must never win.
const definitionSchema = `{
	"type": "object",
	"required": ["platforms"],
	"properties": {
		"platforms": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["id", "name"],
				"properties": {
					"id":           {"type": "string", "minLength": 1},
					"name":         {"type": "string", "minLength": 1},
					"aliases":      {"type": "array", "items": {"type": "string"}},
					"priorityRank": {"type": "integer", "minimum": 0},
					"active":       {"type": "boolean"}
				}
			}
		}
	}
}`

// DefinitionFile is the on-disk / over-the-wire catalog payload shape.
type DefinitionFile struct {
	Version   string       `json:"version,omitempty"`
	Platforms []Definition `json:"platforms"`
}

// ParseDefinitions validates a raw catalog payload and returns its entries.
func ParseDefinitions(data []byte) ([]Definition, error) {
	schemaLoader := gojsonschema.NewStringLoader(definitionSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, errors.NewCatalogInvalidError(err.Error())
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, errors.NewCatalogInvalidError(strings.Join(msgs, "; "))
	}

	var file DefinitionFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, errors.NewCatalogInvalidError(fmt.Sprintf("unmarshal: %v", err))
	}

	return file.Platforms, nil
}

// Load reads the catalog definition file and builds a catalog from it.
// Build fails softly: an unreadable or invalid source falls back to the
// built-in default set rather than leaving resolution without entities.
func Load(path string, log logger.Logger) *Catalog {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn("catalog source unreadable, using built-in defaults", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return Build(DefaultDefinitions(), log)
	}

	defs, err := ParseDefinitions(data)
	if err != nil {
		log.Warn("catalog source invalid, using built-in defaults", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return Build(DefaultDefinitions(), log)
	}

	log.Info("platform catalog loaded", map[string]interface{}{
		"path":      path,
		"platforms": len(defs),
	})
	return Build(defs, log)
}
