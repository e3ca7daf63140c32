package domain

import (
	"math"
	"time"
)

type Status string

const (
	StatusQueued     Status = "QUEUED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusReady      Status = "READY"
)

var nextStatus = map[Status]Status{
	StatusQueued:     StatusInProgress,
	StatusInProgress: StatusReady,
}

// CanTransition reports whether to directly follows from. Status only moves forward one step.
func CanTransition(from, to Status) bool {
	n, ok := nextStatus[from]
	return ok && n == to
}

type MenuItem struct {
	ID        string  `json:"id" db:"id" yaml:"id"`
	Name      string  `json:"name" db:"name" yaml:"name"`
	Price     float64 `json:"price" db:"price" yaml:"price"`
	Available bool    `json:"available" db:"available" yaml:"available"`
}

type Order struct {
	ID          string      `json:"order_id"`
	OwnerID     string      `json:"owner_id"`
	Status      Status      `json:"status"`
	ETAMinutes  int         `json:"eta_minutes"`
	TotalAmount float64     `json:"total_amount"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	Lines       []OrderLine `json:"items"`
}

type OrderLine struct {
	OrderID   string  `json:"-"`
	ItemID    string  `json:"item_id"`
	Quantity  int     `json:"qty"`
	UnitPrice float64 `json:"unit_price"`
}

// Total is Σ unit_price × qty rounded to cents.
func Total(lines []OrderLine) float64 {
	var sum float64
	for _, l := range lines {
		sum += l.UnitPrice * float64(l.Quantity)
	}
	return math.Round(sum*100) / 100
}
