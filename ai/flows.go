// Package ai wraps the hosted completion provider behind three typed
// flows: search ranking, recommendation selection, and description
// generation. Every flow validates the model output and callers fall back
// to a safe default on any error; nothing here ever reaches an end user as
// a failure.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ProductDigest is the compact catalog entry fed into prompts.
type ProductDigest struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    int64  `json:"price"`
}

// Flows holds the completion client. A nil client means the provider is
// not configured and every flow returns its fallback immediately.
type Flows struct {
	client *openai.Client
	model  string
}

// New builds the flows from the environment. OPENAI_BASE_URL overrides the
// provider endpoint.
func New() *Flows {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return &Flows{}
	}
	cfg := openai.DefaultConfig(key)
	if base := os.Getenv("OPENAI_BASE_URL"); base != "" {
		cfg.BaseURL = base
	}
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Flows{client: openai.NewClientWithConfig(cfg), model: model}
}

// NewWithClient is used by tests to point the flows at a fake provider.
func NewWithClient(client *openai.Client, model string) *Flows {
	return &Flows{client: client, model: model}
}

// Enabled reports whether a provider is configured.
func (f *Flows) Enabled() bool {
	return f.client != nil
}

type idSelection struct {
	ProductIDs []uint `json:"product_ids"`
}

func digestCatalog(catalog []ProductDigest) string {
	var b strings.Builder
	for _, p := range catalog {
		fmt.Fprintf(&b, "- id=%d name=%q category=%q price=%d\n", p.ID, p.Name, p.Category, p.Price)
	}
	return b.String()
}

// completeJSON runs one chat completion in JSON mode and unmarshals the
// reply into out.
func (f *Flows) completeJSON(ctx context.Context, system, user string, out interface{}) error {
	if f.client == nil {
		return fmt.Errorf("completion provider not configured")
	}
	resp, err := f.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: f.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return err
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("empty completion response")
	}
	return json.Unmarshal([]byte(resp.Choices[0].Message.Content), out)
}

// validateIDs keeps only ids that exist in the catalog, preserving order
// and dropping duplicates.
func validateIDs(ids []uint, catalog []ProductDigest) []uint {
	known := make(map[uint]bool, len(catalog))
	for _, p := range catalog {
		known[p.ID] = true
	}
	var valid []uint
	seen := make(map[uint]bool)
	for _, id := range ids {
		if known[id] && !seen[id] {
			valid = append(valid, id)
			seen[id] = true
		}
	}
	return valid
}

// RankProducts maps a natural-language query onto catalog product ids,
// best match first.
func (f *Flows) RankProducts(ctx context.Context, query string, catalog []ProductDigest) ([]uint, error) {
	system := `You rank products in a digital goods storefront. Reply with JSON: {"product_ids": [...]} containing only ids from the catalog, best match first. Return an empty list when nothing matches.`
	user := fmt.Sprintf("Catalog:\n%s\nQuery: %s", digestCatalog(catalog), query)

	var sel idSelection
	if err := f.completeJSON(ctx, system, user, &sel); err != nil {
		return nil, err
	}
	return validateIDs(sel.ProductIDs, catalog), nil
}

// RecommendProducts selects products for a buyer given their purchase
// history.
func (f *Flows) RecommendProducts(ctx context.Context, history []string, catalog []ProductDigest) ([]uint, error) {
	system := `You recommend products in a digital goods storefront. Reply with JSON: {"product_ids": [...]} with at most 5 ids from the catalog, ordered by relevance. Do not recommend products the buyer already purchased.`
	user := fmt.Sprintf("Catalog:\n%s\nAlready purchased: %s", digestCatalog(catalog), strings.Join(history, ", "))

	var sel idSelection
	if err := f.completeJSON(ctx, system, user, &sel); err != nil {
		return nil, err
	}
	ids := validateIDs(sel.ProductIDs, catalog)
	if len(ids) > 5 {
		ids = ids[:5]
	}
	return ids, nil
}

type generatedDescription struct {
	Description string `json:"description"`
}

// GenerateDescription writes a product description from its name,
// category and feature list.
func (f *Flows) GenerateDescription(ctx context.Context, name, category string, features []string) (string, error) {
	system := `You write short sales copy for digital products in Indonesian. Reply with JSON: {"description": "..."} of 2-3 sentences, no emoji, no price claims.`
	user := fmt.Sprintf("Product: %s\nCategory: %s\nFeatures:\n- %s", name, category, strings.Join(features, "\n- "))

	var out generatedDescription
	if err := f.completeJSON(ctx, system, user, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.Description) == "" {
		return "", fmt.Errorf("model returned empty description")
	}
	return out.Description, nil
}
