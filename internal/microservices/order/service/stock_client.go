package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"cafeteria-system/internal/common/apperr"
	"cafeteria-system/internal/common/httpx"
	"cafeteria-system/internal/domain"
)

type StockClient interface {
	Reserve(ctx context.Context, req domain.ReserveRequest) (domain.ReserveResponse, error)
}

// HTTPStockClient calls the stock service and turns its problem bodies back into apperr values.
type HTTPStockClient struct {
	baseURL string
	hc      *http.Client
}

func NewHTTPStockClient(baseURL string, hc *http.Client) *HTTPStockClient {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &HTTPStockClient{baseURL: strings.TrimRight(baseURL, "/"), hc: hc}
}

func (c *HTTPStockClient) Reserve(ctx context.Context, req domain.ReserveRequest) (domain.ReserveResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return domain.ReserveResponse{}, err
	}
	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/stock/reserve", bytes.NewReader(body))
	if err != nil {
		return domain.ReserveResponse{}, err
	}
	hreq.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(hreq)
	if err != nil {
		return domain.ReserveResponse{}, apperr.Upstream("stock service unavailable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.ReserveResponse{}, problemError(resp)
	}
	var out domain.ReserveResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.ReserveResponse{}, apperr.Upstream("stock service returned a malformed body", err)
	}
	return out, nil
}

func problemError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var p httpx.Problem
	detail := fmt.Sprintf("stock service responded %d", resp.StatusCode)
	if json.Unmarshal(raw, &p) == nil && p.Detail != "" {
		detail = p.Detail
	}
	if p.Type == string(apperr.KindChaos) {
		return apperr.Upstream(detail, errors.New("stock service in chaos mode"))
	}
	return apperr.FromStatus(resp.StatusCode, detail)
}
