// Package api embeds the OpenAPI contract served at /openapi.yaml and
// enforced by the HTTP adapter's request validation.
package api

import (
	_ "embed"
)

//go:embed openapi.yaml
var Spec []byte
