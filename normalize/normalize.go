// Package normalize validates and coerces untrusted records (persisted
// cart JSON, catalog payloads, order lists) into their canonical shapes.
// The policy is lossy-but-safe: malformed entries are dropped, never
// surfaced as fatal errors.
package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"shonar/models"
)

// DefaultSize is the fallback token stored when a record carries no size.
const DefaultSize = "Free Size"

// CartLine validates one raw record and coerces it into a canonical
// models.CartLine. ok is false when id or name is not a non-empty
// string, or price does not coerce to a finite number >= 0.
func CartLine(raw map[string]any) (models.CartLine, bool) {
	id := str(raw["id"])
	name := str(raw["name"])
	price, priceOK := num(raw["price"])

	if id == "" || name == "" || !priceOK || price < 0 || !isFinite(price) {
		return models.CartLine{}, false
	}

	line := models.CartLine{
		ID:       id,
		Name:     name,
		Price:    price,
		Quantity: Quantity(raw["quantity"]),
		Color:    str(raw["color"]),
	}

	if size := str(raw["size"]); size != "" {
		line.Size = size
	} else {
		line.Size = DefaultSize
	}

	// imageUrl with a legacy "image" fallback, resolved once here.
	if img := str(raw["imageUrl"]); img != "" {
		line.ImageURL = img
	} else {
		line.ImageURL = str(raw["image"])
	}

	return line, true
}

// CartLines maps and filters a raw list, silently dropping invalid
// entries. Corrupt persisted state degrades to fewer valid lines.
func CartLines(raws []map[string]any) []models.CartLine {
	lines := make([]models.CartLine, 0, len(raws))
	for _, raw := range raws {
		if line, ok := CartLine(raw); ok {
			lines = append(lines, line)
		}
	}
	return lines
}

// DecodeCartLines parses a persisted cart JSON string defensively. A
// parse failure or shape mismatch yields an empty list, never an error.
func DecodeCartLines(data string) []models.CartLine {
	if strings.TrimSpace(data) == "" {
		return []models.CartLine{}
	}
	var raws []map[string]any
	if err := json.Unmarshal([]byte(data), &raws); err != nil {
		return []models.CartLine{}
	}
	return CartLines(raws)
}

// Product validates one raw catalog record. Entries without a stable
// id, name or a finite non-negative price are rejected; an empty size
// list falls back to the single default size so the product stays
// displayable.
func Product(raw map[string]any) (models.Product, bool) {
	id := str(raw["id"])
	if id == "" {
		id = str(raw["productId"])
	}
	name := str(raw["name"])
	price, priceOK := num(raw["price"])

	if id == "" || name == "" || !priceOK || price < 0 || !isFinite(price) {
		return models.Product{}, false
	}

	p := models.Product{
		ProductID: id,
		Name:      name,
		Price:     price,
		ImageURL:  str(raw["imageUrl"]),
		Category:  str(raw["category"]),
		Sizes:     strs(raw["sizes"]),
		Colors:    strs(raw["colors"]),
	}
	if p.ImageURL == "" {
		p.ImageURL = str(raw["image"])
	}
	if len(p.Sizes) == 0 {
		p.Sizes = []string{DefaultSize}
	}
	return p, true
}

// Products maps and filters a raw catalog payload.
func Products(raws []map[string]any) []models.Product {
	out := make([]models.Product, 0, len(raws))
	for _, raw := range raws {
		if p, ok := Product(raw); ok {
			out = append(out, p)
		}
	}
	return out
}

// Quantity coerces any value via max(1, floor(numeric or 1)).
func Quantity(v any) int {
	n, ok := num(v)
	if !ok || !isFinite(n) {
		return 1
	}
	q := int(math.Floor(n))
	if q < 1 {
		return 1
	}
	return q
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// str returns v as a trimmed string, or "" for anything non-string.
func str(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// strs returns v as a list of non-empty strings.
func strs(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s := str(it); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// num coerces numbers arriving as float64, int, json.Number or numeric
// strings. ok is false when the value cannot be read as a number.
func num(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
