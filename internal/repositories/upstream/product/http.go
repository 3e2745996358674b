package product

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	httpHelper "github.com/trendora/reco/pkg/api/http"
	"github.com/trendora/reco/pkg/httpclient"
)

const envPrefix = "PRODUCT_SERVICE"

var client Client

type HTTP struct {
	conn *httpclient.HTTPClient
	host string
	port int
}

type productsResponse struct {
	Data []Product `json:"data"`
}

type productsByIdsRequest struct {
	Ids []string `json:"ids"`
}

func initHTTPClient() Client {
	if client == nil {
		once.Do(func() {
			port := 80
			if viper.IsSet(envPrefix + httpHelper.Port) {
				port = viper.GetInt(envPrefix + httpHelper.Port)
			}
			client = &HTTP{
				conn: httpclient.NewConn(envPrefix),
				host: viper.GetString(envPrefix + httpHelper.Host),
				port: port,
			}
		})
	}
	return client
}

func (h *HTTP) GetHotProducts(ctx context.Context, limit int) ([]Product, error) {
	path := fmt.Sprintf("/internal/products/hot?limit=%d", limit)
	req, err := httpclient.NewHttpRequestBuilder().
		WithContext(ctx).
		WithHost(h.host).
		WithPort(h.port).
		WithPath(path).
		WithMethod(http.MethodGet).
		BuildContentTypeJson()
	if err != nil {
		return nil, err
	}
	return h.doProducts(req, path)
}

func (h *HTTP) GetProductsByIds(ctx context.Context, ids []string) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}
	path := "/internal/products/batch"
	req, err := httpclient.NewHttpRequestBuilder().
		WithContext(ctx).
		WithHost(h.host).
		WithPort(h.port).
		WithPath(path).
		WithMethod(http.MethodPost).
		WithBody(productsByIdsRequest{Ids: ids}).
		BuildContentTypeJson()
	if err != nil {
		return nil, err
	}
	return h.doProducts(req, path)
}

func (h *HTTP) doProducts(req *http.Request, path string) ([]Product, error) {
	resp, err := h.conn.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if !httpHelper.IsStandard2xx(resp.StatusCode) {
		log.Error().Msgf("product service returned status %d for %s: %s", resp.StatusCode, path, string(body))
		return nil, fmt.Errorf("product service returned status %d", resp.StatusCode)
	}
	var parsed productsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}
	return parsed.Data, nil
}
