// Package schemas embeds the JSON Schemas that describe every structured LLM output.
package schemas

import "embed"

// Files holds the *.schema.json documents, one per capability.
//
//go:embed *.schema.json
var Files embed.FS
