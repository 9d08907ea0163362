package model

import "time"

// Transaction is one invoice line as read from the retail sheet.
// Missing text values are empty strings.
type Transaction struct {
	Invoice     string    `json:"invoice"`
	StockCode   string    `json:"stock_code"`
	Description string    `json:"description"`
	Quantity    float64   `json:"quantity"`
	InvoiceDate time.Time `json:"invoice_date"`
	Price       float64   `json:"price"`
	CustomerID  string    `json:"customer_id"`
	Country     string    `json:"country"`
}

// LineItem is a transaction that survived cleaning, with its derived revenue.
type LineItem struct {
	Transaction
	Revenue float64 `json:"revenue"` // Quantity × Price
}

// NewLineItem derives the revenue of a transaction.
func NewLineItem(t Transaction) LineItem {
	return LineItem{Transaction: t, Revenue: t.Quantity * t.Price}
}
