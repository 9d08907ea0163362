package model

import (
	"strconv"
	"strings"
)

// CustomerMetrics holds the raw RFM metrics of one customer.
type CustomerMetrics struct {
	CustomerID string  `json:"customer_id"`
	Recency    int     `json:"recency"`   // whole days since the latest invoice
	Frequency  int     `json:"frequency"` // distinct invoices
	Monetary   float64 `json:"monetary"`  // summed line revenue
}

// CustomerRFM is one row of the scored and segmented customer table.
type CustomerRFM struct {
	CustomerID     string  `json:"customer_id" yaml:"customer_id" csv:"customer_id"`
	Recency        int     `json:"recency" yaml:"recency" csv:"recency"`
	Frequency      int     `json:"frequency" yaml:"frequency" csv:"frequency"`
	Monetary       float64 `json:"monetary" yaml:"monetary" csv:"monetary"`
	RecencyScore   int     `json:"recency_score" yaml:"recency_score" csv:"recency_score"`
	FrequencyScore int     `json:"frequency_score" yaml:"frequency_score" csv:"frequency_score"`
	MonetaryScore  int     `json:"monetary_score" yaml:"monetary_score" csv:"monetary_score"`
	RFScore        string  `json:"rf_score" yaml:"rf_score" csv:"rf_score"`
	Segment        string  `json:"segment" yaml:"segment" csv:"segment"`
}

// SegmentSummary aggregates the customers of one segment.
type SegmentSummary struct {
	Segment       string  `json:"segment" yaml:"segment" csv:"segment"`
	Count         int     `json:"count" yaml:"count" csv:"count"`
	MeanRecency   float64 `json:"recency_mean" yaml:"recency_mean" csv:"recency_mean"`
	MeanFrequency float64 `json:"frequency_mean" yaml:"frequency_mean" csv:"frequency_mean"`
	MeanMonetary  float64 `json:"monetary_mean" yaml:"monetary_mean" csv:"monetary_mean"`
}

// CompareCustomerIDs orders customer IDs numerically when both are integers
// and lexically otherwise. Numeric IDs sort before non-numeric ones; equal
// numbers written differently ("007", "7") fall back to lexical order.
func CompareCustomerIDs(a, b string) int {
	ai, aErr := strconv.ParseInt(a, 10, 64)
	bi, bErr := strconv.ParseInt(b, 10, 64)
	switch {
	case aErr == nil && bErr == nil:
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
		return strings.Compare(a, b)
	case aErr == nil:
		return -1
	case bErr == nil:
		return 1
	}
	return strings.Compare(a, b)
}
