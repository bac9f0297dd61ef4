package domain

import "github.com/shopspring/decimal"

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Length      string          `json:"length,omitempty"`
	Texture     string          `json:"texture,omitempty"`
	Images      []string        `json:"images"`
	InStock     bool            `json:"inStock"`
	StockCount  int             `json:"stockCount"`
	Featured    bool            `json:"featured"`
	Badge       string          `json:"badge,omitempty"`
}
