package user

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	httpHelper "github.com/trendora/reco/pkg/api/http"
	"github.com/trendora/reco/pkg/httpclient"
)

const envPrefix = "USER_SERVICE"

var client Client

type HTTP struct {
	conn *httpclient.HTTPClient
	host string
	port int
}

type behaviorsResponse struct {
	Data []BehaviorEvent `json:"data"`
}

type stringsResponse struct {
	Data []string `json:"data"`
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

func (h *HTTP) GetBehaviors(ctx context.Context, userId string, days int) ([]BehaviorEvent, error) {
	path := fmt.Sprintf("/internal/users/%s/behaviors?days=%d", url.PathEscape(userId), days)
	var parsed behaviorsResponse
	if err := h.getJSON(ctx, path, &parsed); err != nil {
		return nil, err
	}
	return parsed.Data, nil
}

func (h *HTTP) GetInterests(ctx context.Context, userId string) ([]string, error) {
	path := fmt.Sprintf("/internal/users/%s/interests", url.PathEscape(userId))
	var parsed stringsResponse
	if err := h.getJSON(ctx, path, &parsed); err != nil {
		return nil, err
	}
	return parsed.Data, nil
}

func (h *HTTP) GetSearchKeywords(ctx context.Context, userId string, limit int) ([]string, error) {
	path := fmt.Sprintf("/internal/users/%s/search-keywords?limit=%d", url.PathEscape(userId), limit)
	var parsed stringsResponse
	if err := h.getJSON(ctx, path, &parsed); err != nil {
		return nil, err
	}
	return parsed.Data, nil
}

func (h *HTTP) GetPurchasedProductIds(ctx context.Context, userId string) ([]string, error) {
	path := fmt.Sprintf("/internal/users/%s/purchases", url.PathEscape(userId))
	var parsed stringsResponse
	if err := h.getJSON(ctx, path, &parsed); err != nil {
		return nil, err
	}
	return parsed.Data, nil
}

func (h *HTTP) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := httpclient.NewHttpRequestBuilder().
		WithContext(ctx).
		WithHost(h.host).
		WithPort(h.port).
		WithPath(path).
		WithMethod(http.MethodGet).
		BuildContentTypeJson()
	if err != nil {
		return err
	}
	resp, err := h.conn.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if !httpHelper.IsStandard2xx(resp.StatusCode) {
		log.Error().Msgf("user service returned status %d for %s: %s", resp.StatusCode, path, string(body))
		return fmt.Errorf("user service returned status %d", resp.StatusCode)
	}
	return json.Unmarshal(body, out)
}
