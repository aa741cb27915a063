package server

import (
	_ "embed"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var openapiSpec []byte

// validateSpec parses and validates the embedded OpenAPI document at
// startup, so a drifted spec fails loudly instead of being served.
func validateSpec() error {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openapiSpec)
	if err != nil {
		return err
	}
	return doc.Validate(loader.Context)
}
