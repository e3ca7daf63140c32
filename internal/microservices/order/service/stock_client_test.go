package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"cafeteria-system/internal/common/apperr"
	"cafeteria-system/internal/common/httpx"
	"cafeteria-system/internal/domain"
)

func TestHTTPStockClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req domain.ReserveRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		switch req.ItemID {
		case "taken":
			httpx.WriteProblem(w, http.StatusConflict, string(apperr.KindConflict), "item unavailable")
		case "chaos":
			httpx.WriteProblem(w, http.StatusServiceUnavailable, string(apperr.KindChaos), "service in chaos mode")
		case "ghost":
			httpx.WriteProblem(w, http.StatusNotFound, string(apperr.KindNotFound), "item not found")
		default:
			httpx.WriteJSON(w, http.StatusOK, domain.ReserveResponse{Reserved: true, OrderID: req.OrderID, ItemID: req.ItemID})
		}
	}))
	defer srv.Close()

	c := NewHTTPStockClient(srv.URL+"/", srv.Client())
	resp, err := c.Reserve(context.Background(), domain.ReserveRequest{OrderID: "o:burger", ItemID: "burger", Qty: 1})
	if err != nil || !resp.Reserved || resp.OrderID != "o:burger" {
		t.Fatalf("resp=%+v err=%v", resp, err)
	}

	for item, kind := range map[string]apperr.Kind{
		"taken": apperr.KindConflict,
		"ghost": apperr.KindNotFound,
		"chaos": apperr.KindUpstream,
	} {
		_, err := c.Reserve(context.Background(), domain.ReserveRequest{OrderID: "o", ItemID: item, Qty: 1})
		if !apperr.IsKind(err, kind) {
			t.Errorf("%s: %v", item, err)
		}
	}
	_, err = c.Reserve(context.Background(), domain.ReserveRequest{OrderID: "o", ItemID: "taken", Qty: 1})
	if e, ok := apperr.As(err); !ok || e.Message != "item unavailable" {
		t.Fatalf("detail not carried over: %v", err)
	}
}

func TestHTTPStockClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPStockClient(url, nil).Reserve(context.Background(), domain.ReserveRequest{OrderID: "o", ItemID: "a", Qty: 1})
	if apperr.StatusOf(err) != http.StatusServiceUnavailable {
		t.Fatalf("err = %v", err)
	}
}
