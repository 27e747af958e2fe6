package http

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/c360/coworking/errors"
)

// Request body schemas check shape and types. Field content rules such as
// lengths and email format belong to the booking services.
const (
	spaceObject = `{
		"type": "object",
		"properties": {
			"id":             {"type": "integer"},
			"name":           {"type": "string"},
			"address":        {"type": ["string", "null"]},
			"reservationIds": {"type": ["array", "null"], "items": {"type": "integer"}}
		}
	}`

	userObject = `{
		"type": "object",
		"properties": {
			"id":             {"type": "integer"},
			"firstName":      {"type": "string"},
			"middleName":     {"type": ["string", "null"]},
			"lastName":       {"type": "string"},
			"email":          {"type": "string"},
			"password":       {"type": ["string", "null"]},
			"reservationIds": {"type": ["array", "null"], "items": {"type": "integer"}}
		}
	}`

	reservationObject = `{
		"type": "object",
		"properties": {
			"id":               {"type": "integer"},
			"reservationDate":  {"type": ["string", "null"], "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"},
			"coworkingSpaceId": {"type": "integer"},
			"userIds":          {"type": ["array", "null"], "items": {"type": "integer"}}
		}
	}`
)

var (
	spaceSchema        = mustSchema(spaceObject)
	spacesSchema       = mustSchema(arrayOf(spaceObject))
	userSchema         = mustSchema(userObject)
	usersSchema        = mustSchema(arrayOf(userObject))
	reservationSchema  = mustSchema(reservationObject)
	reservationsSchema = mustSchema(arrayOf(reservationObject))
)

func arrayOf(item string) string {
	return fmt.Sprintf(`{"type": "array", "minItems": 1, "items": %s}`, item)
}

func mustSchema(source string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
	if err != nil {
		panic(fmt.Sprintf("invalid request schema: %v", err))
	}
	return schema
}

// validateBody checks body against schema and returns a client-facing
// invalid error describing every violation.
func validateBody(schema *gojsonschema.Schema, body []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return errors.Invalidf("Gateway", "validateBody", "Malformed JSON request body")
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		if desc.Field() == gojsonschema.STRING_CONTEXT_ROOT {
			problems = append(problems, desc.Description())
			continue
		}
		problems = append(problems, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	return errors.Invalidf("Gateway", "validateBody", "Invalid request body: %s", strings.Join(problems, "; "))
}
