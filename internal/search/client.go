package search

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
)

type Config struct {
	URL      string
	User     string
	Password string
	Index    string

	Transport http.RoundTripper
}

// NewClient connects to Elasticsearch and makes sure the product index exists.
func NewClient(ctx context.Context, cfg Config, l *slog.Logger) (*Index, error) {
	l.Info("es_connecting", "url", cfg.URL, "index", cfg.Index)

	esCfg := elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
		Transport: cfg.Transport,
	}

	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("create es client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("es info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("es info: %s: %s", res.Status(), body)
	}

	idx := &Index{es: client, name: cfg.Index}
	if err := idx.ensureIndex(ctx); err != nil {
		return nil, err
	}

	l.Info("es_connected", "index", cfg.Index)
	return idx, nil
}
