package main

import (
	"encoding/json"
	"log"
	"os"

	"github.com/grovetools/speechprep/config"
	"github.com/invopop/jsonschema"
)

const schemaFile = "speechprep.schema.json"

func main() {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: true,
		ExpandedStruct:            true,
		FieldNameTag:              "yaml",
	}

	schema := r.Reflect(&config.Config{})
	schema.Title = "speechprep Configuration"
	schema.Description = "Schema for the 'speechprep' extension in grove.yml and for --config-file documents."

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		log.Fatalf("Error marshaling schema: %v", err)
	}

	if err := os.WriteFile(schemaFile, data, 0644); err != nil {
		log.Fatalf("Error writing schema file: %v", err)
	}

	log.Printf("Successfully generated speechprep schema at %s", schemaFile)
}
