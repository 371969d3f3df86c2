// Package httputil fetches remote datasets.
//
// Coaching platforms export activity and nutrition logs over HTTP. [Fetch]
// downloads such an export with a size limit and retries transient failures
// (network errors, 5xx and 429 responses) with exponential backoff via
// [Retry]. The body is returned as-is; decoding is left to pkg/io.
//
//	data, format, err := httputil.Fetch(ctx, nil, "https://coach.example/export/week.csv")
//	records, err := fcio.Read(bytes.NewReader(data), format)
package httputil
