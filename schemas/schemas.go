// Package schemas embeds the JSON Schemas for data files the tracker reads.
package schemas

import _ "embed"

// Applications is the schema for a fixture file holding a JSON array of
// application records.
//
//go:embed applications.schema.json
var Applications string
