package model

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/save_payload.schema.json
var savePayloadSchema []byte

var savePayloadLoader = gojsonschema.NewBytesLoader(savePayloadSchema)

// ValidateSavePayload validates a payload against the save schema before it
// is sent to the resume service.
func ValidateSavePayload(p SavePayload) error {
	return validate(savePayloadLoader, gojsonschema.NewGoLoader(p))
}

func validate(schema, doc gojsonschema.JSONLoader) error {
	res, err := gojsonschema.Validate(schema, doc)
	if err != nil {
		return err
	}
	if res.Valid() {
		return nil
	}
	// collect errors
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("schema validation failed: %s", strings.Join(msgs, "; "))
}
