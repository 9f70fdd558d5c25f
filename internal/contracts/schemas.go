package contracts

import (
	"classifieds-browser/schemas"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	CatalogV1   = "catalog/v1"
	FavoritesV1 = "favorites/v1"
)

const resourcePrefix = "mem://schemas/"

var compiledSchemas = make(map[string]*jsonschema.Schema)

func init() {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	var paths []string
	err := fs.WalkDir(schemas.SchemasFS, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		file, err := schemas.SchemasFS.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()
		if err := compiler.AddResource(resourcePrefix+path, file); err != nil {
			return fmt.Errorf("add schema resource %s: %w", path, err)
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		log.Fatalf("contracts: error loading schema resources: %v", err)
	}

	for _, path := range paths {
		schema, err := compiler.Compile(resourcePrefix + path)
		if err != nil {
			log.Fatalf("contracts: could not compile schema %s: %v", path, err)
		}
		compiledSchemas[strings.TrimSuffix(path, ".json")] = schema
	}
}

// Validate проверяет тело документа по схеме с ключом вида "catalog/v1".
func Validate(key string, body []byte) error {
	schema, ok := compiledSchemas[key]
	if !ok {
		return fmt.Errorf("schema %q not found", key)
	}

	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("document is not a valid JSON: %w", err)
	}

	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("JSON schema validation failed: %w", err)
	}
	return nil
}
