package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/invopop/jsonschema"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// SchemaID is the published location of the schema
const SchemaID = "https://raw.githubusercontent.com/NikitaCOEUR/compleat/main/schema/compleat.schema.json"

// Schema reflects the JSON Schema of Config
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
		ExpandedStruct:             true,
	}
	schema := r.Reflect(&Config{})

	matcherNames := make([]interface{}, len(KnownMatchers))
	for i, name := range KnownMatchers {
		matcherNames[i] = name
	}
	if disabled, ok := schema.Properties.Get("disabled"); ok && disabled.Items != nil {
		disabled.Items.Enum = matcherNames
	}
	if exclusive, ok := schema.Properties.Get("exclusive"); ok {
		exclusive.PropertyNames = &jsonschema.Schema{Enum: matcherNames}
	}

	// Use draft-07 for IDE compatibility
	schema.Version = "http://json-schema.org/draft-07/schema#"
	schema.ID = SchemaID
	schema.Title = "compleat configuration"
	schema.Description = "Configuration file for compleat, the completion dispatch engine"
	return schema
}

// GetSchemaJSON returns the JSON Schema for compleat configuration
func GetSchemaJSON() string {
	data, err := json.MarshalIndent(Schema(), "", "  ")
	if err != nil {
		// the schema is built from static types
		panic(err)
	}
	return string(data)
}

// ValidateWithSchema validates a config file against the JSON Schema
func ValidateWithSchema(path string, content []byte) (*ValidationResult, error) {
	result := &ValidationResult{
		Valid:  true,
		Errors: []ValidationError{},
	}

	var data interface{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(content, &data); err != nil {
			result.addError("syntax", fmt.Sprintf("Invalid YAML syntax: %v", err))
			return result, nil
		}
	case ".json":
		if err := json.Unmarshal(content, &data); err != nil {
			result.addError("syntax", fmt.Sprintf("Invalid JSON syntax: %v", err))
			return result, nil
		}
	case ".toml":
		var m map[string]interface{}
		if _, err := toml.Decode(string(content), &m); err != nil {
			result.addError("syntax", fmt.Sprintf("Invalid TOML syntax: %v", err))
			return result, nil
		}
		data = m
	default:
		return nil, fmt.Errorf("unsupported file format: %s", ext)
	}

	// an empty file is a valid, empty config
	if data == nil {
		data = map[string]interface{}{}
	}

	schemaLoader := gojsonschema.NewStringLoader(GetSchemaJSON())
	documentLoader := gojsonschema.NewGoLoader(data)

	validationResult, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("schema validation error: %w", err)
	}

	if !validationResult.Valid() {
		for _, err := range validationResult.Errors() {
			result.addError(err.Field(), err.Description())
		}
	}
	return result, nil
}
