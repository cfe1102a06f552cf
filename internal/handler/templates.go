package handler

import (
	"html/template"
	"time"

	"github.com/shopspring/decimal"
)

// TemplateFuncs returns a FuncMap with custom template functions
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"year": func() int {
			return time.Now().Year()
		},
		"egp": FormatEGP,
	}
}

// FormatEGP renders an amount the way the storefront prints prices,
// e.g. "1200 EGP". It accepts decimal.Decimal or *decimal.Decimal.
func FormatEGP(v any) string {
	switch d := v.(type) {
	case decimal.Decimal:
		return d.String() + " EGP"
	case *decimal.Decimal:
		if d == nil {
			return ""
		}
		return d.String() + " EGP"
	default:
		return ""
	}
}
