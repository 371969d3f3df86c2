package dataset_test

import (
	"fmt"

	"github.com/matzehuels/fitcharts/pkg/dataset"
)

func ExampleNormalize() {
	items := dataset.Normalize([]dataset.Record{
		{"name": "Mon", "kcal": 2100},
		{"label": "Tue", "kcal": "1950"},
		{"kcal": "abc"},
	}, "kcal")

	for _, it := range items {
		fmt.Printf("%s=%v coerced=%v\n", it.Name, it.Value, it.Coerced)
	}
	// Output:
	// Mon=2100 coerced=false
	// Tue=1950 coerced=false
	// Item=0 coerced=true
}
