package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/trendora/reco/internal/config/structs"
	httpHelper "github.com/trendora/reco/pkg/api/http"
	"github.com/trendora/reco/pkg/httpclient"
	"github.com/trendora/reco/pkg/metric"
)

const (
	envPrefix     = "EMBEDDING"
	embeddingPath = "/api/v1/services/embeddings/text-embedding/text-embedding"
)

var provider Provider

// DashScope calls a DashScope compatible text embedding endpoint.
type DashScope struct {
	client *httpclient.HTTPClient
	host   string
	port   int
	model  string
	apiKey string
}

type embeddingRequest struct {
	Model string         `json:"model"`
	Input embeddingInput `json:"input"`
}

type embeddingInput struct {
	Texts []string `json:"texts"`
}

type embeddingResponse struct {
	Output struct {
		Embeddings []struct {
			TextIndex int       `json:"text_index"`
			Embedding []float32 `json:"embedding"`
		} `json:"embeddings"`
	} `json:"output"`
	Message string `json:"message"`
}

func initDashScope() Provider {
	if provider == nil {
		once.Do(func() {
			cfg := structs.GetAppConfig().Configs
			port := 443
			if viper.IsSet(envPrefix + httpHelper.Port) {
				port = viper.GetInt(envPrefix + httpHelper.Port)
			}
			provider = &DashScope{
				client: httpclient.NewConn(envPrefix),
				host:   viper.GetString(envPrefix + httpHelper.Host),
				port:   port,
				model:  cfg.EmbeddingModel,
				apiKey: cfg.EmbeddingApiKey,
			}
		})
	}
	return provider
}

func (d *DashScope) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := d.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, ErrProvider
	}
	return embeddings[0], nil
}

func (d *DashScope) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	req, err := httpclient.NewHttpRequestBuilder().
		WithContext(ctx).
		WithHost(d.host).
		WithPort(d.port).
		WithPath(embeddingPath).
		WithMethod(http.MethodPost).
		WithHeader(httpHelper.HeaderAuthorization, "Bearer "+d.apiKey).
		WithBody(embeddingRequest{
			Model: d.model,
			Input: embeddingInput{Texts: texts},
		}).
		BuildContentTypeJson()
	if err != nil {
		return nil, err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		if os.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
			metric.Incr("embedding_provider_timeout", []string{"provider", "dashscope"})
			return nil, ErrProviderTimeout
		}
		metric.Incr("embedding_provider_failure", []string{"provider", "dashscope"})
		return nil, ErrProvider
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metric.Incr("embedding_provider_failure", []string{"provider", "dashscope"})
		return nil, ErrProvider
	}
	if !httpHelper.IsStandard2xx(resp.StatusCode) {
		log.Error().Msgf("embedding provider returned status %d: %s", resp.StatusCode, string(body))
		metric.Incr("embedding_provider_failure", []string{"provider", "dashscope"})
		return nil, ErrProvider
	}
	var parsed embeddingResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		log.Error().Msgf("embedding provider returned malformed body: %v", err)
		metric.Incr("embedding_provider_failure", []string{"provider", "dashscope"})
		return nil, ErrProvider
	}
	if len(parsed.Output.Embeddings) != len(texts) {
		log.Error().Msgf("embedding provider returned %d embeddings for %d texts", len(parsed.Output.Embeddings), len(texts))
		return nil, ErrProvider
	}
	embeddings := make([][]float32, len(texts))
	for _, item := range parsed.Output.Embeddings {
		if item.TextIndex < 0 || item.TextIndex >= len(texts) {
			return nil, ErrProvider
		}
		embeddings[item.TextIndex] = item.Embedding
	}
	return embeddings, nil
}
