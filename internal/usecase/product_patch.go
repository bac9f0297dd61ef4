package usecase

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"norahair-backend/internal/domain"
)

func applyProductPatch(p *domain.Product, patch map[string]any) {
	for k, v := range patch {
		switch k {
		case "name":
			if s, ok := v.(string); ok {
				p.Name = s
			}
		case "description":
			if s, ok := v.(string); ok {
				p.Description = s
			}
		case "price":
			switch n := v.(type) {
			case float64:
				p.Price = decimal.NewFromFloat(n)
			case string:
				if d, err := decimal.NewFromString(n); err == nil {
					p.Price = d
				}
			case json.Number:
				if d, err := decimal.NewFromString(n.String()); err == nil {
					p.Price = d
				}
			}
		case "category":
			if s, ok := v.(string); ok {
				p.Category = s
			}
		case "length":
			if s, ok := v.(string); ok {
				p.Length = s
			}
		case "texture":
			if s, ok := v.(string); ok {
				p.Texture = s
			}
		case "images":
			if xs, ok := v.([]any); ok {
				imgs := make([]string, 0, len(xs))
				for _, x := range xs {
					if s, ok := x.(string); ok {
						imgs = append(imgs, s)
					}
				}
				p.Images = imgs
			}
		case "inStock":
			if b, ok := v.(bool); ok {
				p.InStock = b
			}
		case "stockCount":
			if n, ok := v.(float64); ok {
				p.StockCount = int(n)
			}
		case "featured":
			if b, ok := v.(bool); ok {
				p.Featured = b
			}
		case "badge":
			if s, ok := v.(string); ok {
				p.Badge = s
			}
		}
	}
}
