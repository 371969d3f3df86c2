// Package io reads chart datasets from JSON, CSV and TOML documents.
//
// # Overview
//
// A dataset is an ordered list of records (see [dataset.Record]). Each record
// is a flat object whose fields are passed through to the chart unchanged;
// the normalizer later picks the display name and the value field.
//
// # JSON
//
// Either a top-level array of objects, or an object carrying the array under
// "data":
//
//	[{"name": "Mon", "value": 1800}, {"name": "Tue", "value": 2100}]
//
//	{"data": [{"label": "Week 1", "steps": 52000}]}
//
// Numbers are decoded as [encoding/json.Number] so that large integers keep
// their precision until normalization.
//
// # CSV
//
// The first row names the fields. Values stay strings; numeric strings are
// coerced by the normalizer the same way they are for JSON input.
//
//	name,value
//	Mon,1800
//	Tue,2100
//
// # TOML
//
// An array of tables named "data":
//
//	[[data]]
//	name = "Mon"
//	value = 1800
//
// # Shape Versus Syntax
//
// Syntax errors (unreadable files, malformed documents) are returned as
// errors with code INVALID_DATASET. A well-formed document of the wrong
// shape, for example a JSON string or an object without "data", yields zero
// records and no error: the chart then shows its empty state.
//
// [dataset.Record]: github.com/matzehuels/fitcharts/pkg/dataset.Record
package io
