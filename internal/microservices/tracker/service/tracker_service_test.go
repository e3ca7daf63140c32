package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"cafeteria-system/internal/common/apperr"
	"cafeteria-system/internal/domain"
)

type fakeRepo struct {
	orders map[string]domain.Order
	err    error
}

func (r fakeRepo) GetOrder(_ context.Context, id string) (domain.Order, bool, error) {
	if r.err != nil {
		return domain.Order{}, false, r.err
	}
	o, ok := r.orders[id]
	return o, ok, nil
}

func (r fakeRepo) Ping(context.Context) error { return nil }

type fakeResolver map[string]string

func (f fakeResolver) Resolve(_ context.Context, token string) (string, error) {
	if owner, ok := f[token]; ok {
		return owner, nil
	}
	return "", apperr.Unauthorized("invalid token")
}

func TestGetOrderCheckOrder(t *testing.T) {
	repo := fakeRepo{orders: map[string]domain.Order{
		"o1": {ID: "o1", OwnerID: "s-1", Status: domain.StatusInProgress, ETAMinutes: 7},
	}}
	svc := NewTrackerService(repo, fakeResolver{"tok-1": "s-1", "tok-2": "s-2"})

	o, err := svc.GetOrder(context.Background(), "tok-1", "o1")
	if err != nil || o.Status != domain.StatusInProgress || o.Lines == nil {
		t.Fatalf("own order: %+v %v", o, err)
	}

	cases := []struct {
		name, token, id string
		code            int
	}{
		{"bad token beats missing order", "bad", "missing", http.StatusUnauthorized},
		{"missing", "tok-2", "missing", http.StatusNotFound},
		{"foreign", "tok-2", "o1", http.StatusForbidden},
	}
	for _, tc := range cases {
		if _, err := svc.GetOrder(context.Background(), tc.token, tc.id); apperr.StatusOf(err) != tc.code {
			t.Errorf("%s: %v", tc.name, err)
		}
	}
}

func TestGetOrderStoreDown(t *testing.T) {
	svc := NewTrackerService(fakeRepo{err: errors.New("conn reset")}, fakeResolver{"tok-1": "s-1"})
	if _, err := svc.GetOrder(context.Background(), "tok-1", "o1"); apperr.StatusOf(err) != http.StatusServiceUnavailable {
		t.Fatalf("err = %v", err)
	}
}
