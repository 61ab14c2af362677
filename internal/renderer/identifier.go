package renderer

import "github.com/mcncl/json2md/internal/models"

// IdentifierFields lists, in priority order, the fields that may label the
// elements of an array of objects.
var IdentifierFields = []string{"title", "name", "id", "key"}

// IdentifierField returns the first of IdentifierFields present on every
// element. Every element must be an object; an empty slice has no
// identifier.
func IdentifierField(items []models.Value) (string, bool) {
	if len(items) == 0 {
		return "", false
	}
	for _, field := range IdentifierFields {
		if allHave(items, field) {
			return field, true
		}
	}
	return "", false
}

func allHave(items []models.Value, field string) bool {
	for _, item := range items {
		if !item.IsObject() || !item.Has(field) {
			return false
		}
	}
	return true
}
