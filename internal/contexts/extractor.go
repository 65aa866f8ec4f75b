package contexts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JaimeStill/rively/internal/inference"
)

// Extractor derives a customer context from the customer's domain.
type Extractor interface {
	Extract(ctx context.Context, domain string) (Context, error)
}

type extractor struct {
	client   inference.Client
	identity inference.Identity
	logger   *slog.Logger
}

// NewExtractor creates an Extractor that asks the hosted context agent at identity.
func NewExtractor(client inference.Client, identity inference.Identity, logger *slog.Logger) Extractor {
	return &extractor{
		client:   client,
		identity: identity,
		logger:   logger.With("system", "context-extractor"),
	}
}

func (e *extractor) Extract(ctx context.Context, domain string) (Context, error) {
	clean := CleanDomain(domain)

	e.logger.InfoContext(ctx, "extracting customer context", "domain", clean)

	reply, err := e.client.Chat(ctx, e.identity, clean)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrExtractionFailed, clean, err)
	}

	return normalize(pickContent(reply), clean), nil
}

// CleanDomain strips the http and https schemes.
func CleanDomain(domain string) string {
	domain = strings.ReplaceAll(domain, "https://", "")
	return strings.ReplaceAll(domain, "http://", "")
}

func pickContent(reply map[string]any) any {
	for _, key := range []string{"message", "response", "data"} {
		if v, ok := reply[key]; ok {
			return v
		}
	}
	return reply
}

func normalize(content any, domain string) Context {
	switch v := content.(type) {
	case string:
		if c, err := Decode([]byte(v)); err == nil {
			return c
		}
		var other any
		if json.Unmarshal([]byte(v), &other) == nil {
			return Context{{Key: "content", Value: other}, {Key: "domain", Value: domain}}
		}
		return Context{{Key: "raw_content", Value: v}, {Key: "domain", Value: domain}}
	case map[string]any:
		return FromMap(v)
	default:
		return Context{{Key: "content", Value: v}, {Key: "domain", Value: domain}}
	}
}
