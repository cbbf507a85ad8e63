// Package schemas embeds the JSON Schemas for model-produced artifacts.
package schemas

import _ "embed"

// AnalysisResult is the schema every analysis model response is checked against before decoding.
//
//go:embed analysis_result.schema.json
var AnalysisResult string
