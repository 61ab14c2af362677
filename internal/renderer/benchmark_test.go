package renderer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/mcncl/json2md/internal/models"
	"github.com/mcncl/json2md/internal/parser"
)

func benchmarkInput(b *testing.B, input string) models.Value {
	b.Helper()
	doc, err := parser.ParseString(input)
	if err != nil {
		b.Fatal(err)
	}
	return doc.Root
}

func BenchmarkRender_ArrayOfObjects(b *testing.B) {
	items := make([]string, 1000)
	for i := range items {
		items[i] = fmt.Sprintf(`{"name": "item %d", "value": %d, "tags": ["a", "b"], "meta": {"x": true}}`, i, i)
	}
	value := benchmarkInput(b, `{"items": [`+strings.Join(items, ",")+`]}`)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Render(value, Options{}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRender_DeepNesting(b *testing.B) {
	value := benchmarkInput(b, strings.Repeat(`{"k": `, 200)+`"leaf"`+strings.Repeat(`}`, 200))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Render(value, Options{MaxHeadingLevel: 3}); err != nil {
			b.Fatal(err)
		}
	}
}
