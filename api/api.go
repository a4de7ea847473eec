// Package api embeds the OpenAPI description of the front desk HTTP API.
// The serve command hands it to the handler, which serves it at /openapi.yaml.
package api

import _ "embed"

// OpenAPI contains the raw bytes of openapi.yaml, embedded at compile time.
//
//go:embed openapi.yaml
var OpenAPI []byte
