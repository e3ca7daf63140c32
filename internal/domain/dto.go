package domain

// Wire types of the stock service, shared by its handlers and the order gateway's client.

type ReserveRequest struct {
	OrderID string `json:"order_id"`
	ItemID  string `json:"item_id"`
	Qty     int    `json:"qty"`
}

type ReserveResponse struct {
	Reserved        bool   `json:"reserved"`
	AlreadyReserved bool   `json:"already_reserved"`
	OrderID         string `json:"order_id"`
	ItemID          string `json:"item_id"`
}

type ReleaseRequest struct {
	OrderID string `json:"order_id"`
}

type ReleaseResponse struct {
	Released bool   `json:"released"`
	OrderID  string `json:"order_id"`
	ItemID   string `json:"item_id"`
}

type StockView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Available bool   `json:"available"`
}
