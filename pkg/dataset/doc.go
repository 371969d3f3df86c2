// Package dataset turns caller-supplied records into chart items.
//
// # Overview
//
// Charts accept loosely typed data: a slice of records decoded from JSON,
// CSV, TOML or built in code. Before anything is drawn, each record is
// reduced to an [Item] with a guaranteed display name and a guaranteed
// finite numeric value.
//
// # Normalization Rules
//
// [Normalize] applies the same rules to every record:
//
//   - Name is the record's "name" field, else its "label" field, else "Item".
//   - Value is the field named by dataKey, coerced the way a browser's
//     Number() would: numbers pass through, numeric strings are parsed,
//     booleans become 1 or 0, anything else becomes 0.
//   - NaN and infinities become 0.
//
// The policy is lossy but safe: an invalid value is rendered as zero instead
// of being dropped or reported. Callers that need to tell a real zero from a
// coerced one can check [Item.Coerced].
//
//	items := dataset.Normalize([]dataset.Record{
//	    {"name": "Mon", "kcal": 2100},
//	    {"name": "Tue", "kcal": "n/a"},
//	}, "kcal")
//	// items[1].Value == 0, items[1].Coerced == true
//
// [NormalizeAny] accepts arbitrary decoded JSON and returns an empty slice
// for anything that is not an array.
package dataset
