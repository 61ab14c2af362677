package e2e_test

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// generateNestedJSON creates a deeply nested JSON structure for benchmarking
func generateNestedJSON(depth int, width int) map[string]interface{} {
	if depth <= 0 {
		return map[string]interface{}{
			"leaf_value": "data",
			"count":      rand.Intn(100),
			"enabled":    rand.Intn(2) == 1,
		}
	}

	result := make(map[string]interface{})
	for i := 0; i < width; i++ {
		key := fmt.Sprintf("nested_%d_%d", depth, i)
		result[key] = generateNestedJSON(depth-1, width)
	}
	return result
}

// generateWideJSON creates a JSON object with many fields at the same level
func generateWideJSON(fieldCount int) map[string]interface{} {
	result := make(map[string]interface{})

	for i := 0; i < fieldCount; i++ {
		// Mix different types of fields
		switch i % 5 {
		case 0:
			result[fmt.Sprintf("string_field_%d", i)] = fmt.Sprintf("value_%d", i)
		case 1:
			result[fmt.Sprintf("int_field_%d", i)] = i
		case 2:
			result[fmt.Sprintf("bool_field_%d", i)] = i%2 == 0
		case 3:
			result[fmt.Sprintf("list_field_%d", i)] = []int{i, i + 1, i + 2}
		case 4:
			result[fmt.Sprintf("object_field_%d", i)] = map[string]interface{}{
				"id":    i,
				"name":  fmt.Sprintf("Object %d", i),
				"value": i * 10,
			}
		}
	}

	return result
}

// benchmarkCLI writes data to a temp file and converts it once per iteration
func benchmarkCLI(b *testing.B, data interface{}, args ...string) {
	b.Helper()
	tempDir := b.TempDir()

	jsonData, err := json.Marshal(data)
	require.NoError(b, err)

	jsonFile := filepath.Join(tempDir, "input.json")
	require.NoError(b, os.WriteFile(jsonFile, jsonData, 0644))
	outputFile := filepath.Join(tempDir, "output.md")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cmdArgs := append([]string{"run", "../../main.go", "-i", jsonFile, "-o", outputFile}, args...)
		output, err := exec.Command("go", cmdArgs...).CombinedOutput()
		require.NoError(b, err, "CLI command failed: %s", string(output))

		if err := os.Remove(outputFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error removing file: %v\n", err)
		}
	}
}

// BenchmarkDeepNesting benchmarks performance with deeply nested JSON structures
func BenchmarkDeepNesting(b *testing.B) {
	if testing.Short() {
		b.Skip("skipping benchmark in short mode")
	}

	depths := []struct {
		name  string
		depth int
		width int
	}{
		{"Depth3Width3", 3, 3},   // Moderate nesting
		{"Depth8Width2", 8, 2},   // Past the heading ceiling
		{"Depth2Width10", 2, 10}, // Wide but shallow
	}

	for _, depth := range depths {
		b.Run(depth.name, func(b *testing.B) {
			benchmarkCLI(b, generateNestedJSON(depth.depth, depth.width))
		})
	}
}

// BenchmarkWideStructures benchmarks performance with wide JSON structures (many fields)
func BenchmarkWideStructures(b *testing.B) {
	if testing.Short() {
		b.Skip("skipping benchmark in short mode")
	}

	widths := []struct {
		name       string
		fieldCount int
	}{
		{"Fields10", 10},
		{"Fields100", 100},
		{"Fields1000", 1000},
	}

	for _, width := range widths {
		b.Run(width.name, func(b *testing.B) {
			benchmarkCLI(b, generateWideJSON(width.fieldCount))
		})
	}
}

// BenchmarkArrayProcessing benchmarks performance with large arrays of objects
func BenchmarkArrayProcessing(b *testing.B) {
	if testing.Short() {
		b.Skip("skipping benchmark in short mode")
	}

	sizes := []struct {
		name      string
		arraySize int
	}{
		{"Array100", 100},
		{"Array1000", 1000},
		{"Array5000", 5000},
	}

	for _, size := range sizes {
		b.Run(size.name, func(b *testing.B) {
			array := make([]map[string]interface{}, size.arraySize)
			for i := 0; i < size.arraySize; i++ {
				array[i] = map[string]interface{}{
					"id":       i,
					"name":     fmt.Sprintf("Item %d", i),
					"value":    rand.Float64() * 100,
					"active":   i%2 == 0,
					"category": fmt.Sprintf("Category %d", i%5),
				}
			}
			benchmarkCLI(b, map[string]interface{}{"items": array}, "--max-level", "3")
		})
	}
}
