package dto

import (
	"strings"

	"cafeteria-system/internal/domain"
)

type CreateOrderRequest struct {
	Items []OrderItemInput `json:"items"`
}

type OrderItemInput struct {
	ID  string `json:"id"`
	Qty int    `json:"qty"`
}

type CreateOrderResponse struct {
	OrderID    string        `json:"order_id"`
	Status     domain.Status `json:"status"`
	ETAMinutes int           `json:"eta_minutes"`
}

// MergeItems trims ids and sums quantities of repeated ids, keeping first-seen order.
// Inputs must already be validated.
func MergeItems(inputs []OrderItemInput) []OrderItemInput {
	idx := make(map[string]int, len(inputs))
	out := make([]OrderItemInput, 0, len(inputs))
	for _, in := range inputs {
		id := strings.TrimSpace(in.ID)
		if i, ok := idx[id]; ok {
			out[i].Qty += in.Qty
			continue
		}
		idx[id] = len(out)
		out = append(out, OrderItemInput{ID: id, Qty: in.Qty})
	}
	return out
}

// ItemIDs returns the ids of already merged inputs.
func ItemIDs(items []OrderItemInput) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}
