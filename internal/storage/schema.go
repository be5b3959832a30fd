package storage

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const moneySchema = `{
  "anyOf": [
    { "type": "number", "minimum": 0 },
    { "type": "string", "pattern": "^[0-9]+(\\.[0-9]+)?$" }
  ]
}`

var productProperties = `
    "id":          { "type": "string", "minLength": 1 },
    "name":        { "type": "string" },
    "description": { "type": "string" },
    "price":       ` + moneySchema + `,
    "image":       { "type": "string" }`

var productsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "name", "price"],
    "properties": {` + productProperties + `
    }
  }
}`

var cartItemSchema = `{
  "type": "object",
  "required": ["id", "name", "price", "quantity"],
  "properties": {` + productProperties + `,
    "quantity": { "type": "integer", "minimum": 1 }
  }
}`

var cartSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": ` + cartItemSchema + `
}`

var ordersSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "items", "total", "customer", "status", "createdAt", "paymentMethod"],
    "properties": {
      "id":    { "type": "string", "minLength": 1 },
      "items": { "type": "array", "items": ` + cartItemSchema + ` },
      "total": ` + moneySchema + `,
      "customer": {
        "type": "object",
        "required": ["name", "email", "phone", "address"],
        "properties": {
          "name":    { "type": "string" },
          "email":   { "type": "string" },
          "phone":   { "type": "string" },
          "address": { "type": "string" }
        }
      },
      "status":        { "enum": ["pending", "accepted", "preparing", "delivery", "completed"] },
      "createdAt":     { "type": "string", "format": "date-time" },
      "paymentMethod": { "enum": ["card", "cash", "pix"] }
    }
  }
}`

var (
	productsLoader = gojsonschema.NewStringLoader(productsSchema)
	cartLoader     = gojsonschema.NewStringLoader(cartSchema)
	ordersLoader   = gojsonschema.NewStringLoader(ordersSchema)
)

// validateShape checks a persisted slot against its JSON schema
func validateShape(schema gojsonschema.JSONLoader, data []byte) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if !result.Valid() {
		var sb strings.Builder
		for i, e := range result.Errors() {
			if i > 0 {
				sb.WriteString("; ")
			}
			sb.WriteString(e.String())
		}
		return fmt.Errorf("snapshot does not conform to schema: %s", sb.String())
	}
	return nil
}
