package httpapi

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const schemaAddCartItem = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["productId"],
  "properties": {
    "productId": { "type": "string", "minLength": 1 }
  },
  "additionalProperties": false
}`

const schemaUpdateQuantity = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["quantity"],
  "properties": {
    "quantity": { "type": "integer" }
  },
  "additionalProperties": false
}`

const schemaCheckout = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["customer", "paymentMethod"],
  "properties": {
    "customer": {
      "type": "object",
      "required": ["name", "email", "phone", "address"],
      "properties": {
        "name":    { "type": "string", "minLength": 1, "pattern": "\\S" },
        "email":   { "type": "string", "minLength": 1, "pattern": "\\S" },
        "phone":   { "type": "string", "minLength": 1, "pattern": "\\S" },
        "address": { "type": "string", "minLength": 1, "pattern": "\\S" }
      },
      "additionalProperties": false
    },
    "paymentMethod": { "type": "string", "enum": ["card", "cash", "pix"] }
  },
  "additionalProperties": false
}`

const schemaPage = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["page"],
  "properties": {
    "page": { "type": "string", "minLength": 1 }
  },
  "additionalProperties": false
}`

const schemaOrderStatus = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["status"],
  "properties": {
    "status": { "type": "string", "minLength": 1 }
  },
  "additionalProperties": false
}`

const schemaNewProduct = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["name", "price"],
  "properties": {
    "name":        { "type": "string", "minLength": 1, "pattern": "\\S" },
    "description": { "type": "string" },
    "price":       { "type": "number", "exclusiveMinimum": 0 },
    "image":       { "type": "string" }
  },
  "additionalProperties": false
}`

var (
	addCartItemLoader    = gojsonschema.NewStringLoader(schemaAddCartItem)
	updateQuantityLoader = gojsonschema.NewStringLoader(schemaUpdateQuantity)
	checkoutLoader       = gojsonschema.NewStringLoader(schemaCheckout)
	pageLoader           = gojsonschema.NewStringLoader(schemaPage)
	orderStatusLoader    = gojsonschema.NewStringLoader(schemaOrderStatus)
	newProductLoader     = gojsonschema.NewStringLoader(schemaNewProduct)
)

func validateJSONSchema(schema gojsonschema.JSONLoader, body []byte) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("malformed request body: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("request does not conform to schema: %s", strings.Join(msgs, "; "))
	}
	return nil
}
