package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCatalog = []ProductDigest{
	{ID: 1, Name: "Netflix Premium", Category: "Streaming", Price: 54000},
	{ID: 2, Name: "Spotify Family", Category: "Musik", Price: 25000},
	{ID: 3, Name: "Canva Pro", Category: "Desain", Price: 40000},
}

// fakeProvider returns a fixed completion content for every request.
func fakeProvider(t *testing.T, content string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		resp := openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: "assistant", Content: content}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func flowsFor(ts *httptest.Server) *Flows {
	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = ts.URL
	return NewWithClient(openai.NewClientWithConfig(cfg), openai.GPT4oMini)
}

func TestRankProductsValidatesIDs(t *testing.T) {
	// id 99 is not in the catalog and id 1 repeats; both must be dropped
	ts := fakeProvider(t, `{"product_ids": [3, 99, 1, 1]}`)
	defer ts.Close()

	ids, err := flowsFor(ts).RankProducts(context.Background(), "desain logo", testCatalog)
	require.NoError(t, err)
	assert.Equal(t, []uint{3, 1}, ids)
}

func TestRankProductsProviderError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error": {"message": "overloaded"}}`)
	}))
	defer ts.Close()

	_, err := flowsFor(ts).RankProducts(context.Background(), "apa saja", testCatalog)
	assert.Error(t, err)
}

func TestRankProductsMalformedOutput(t *testing.T) {
	ts := fakeProvider(t, `sure! here are the products you asked for`)
	defer ts.Close()

	_, err := flowsFor(ts).RankProducts(context.Background(), "netflix", testCatalog)
	assert.Error(t, err)
}

func TestRecommendProductsCapsAtFive(t *testing.T) {
	catalog := make([]ProductDigest, 8)
	for i := range catalog {
		catalog[i] = ProductDigest{ID: uint(i + 1), Name: fmt.Sprintf("P%d", i+1)}
	}
	ts := fakeProvider(t, `{"product_ids": [1,2,3,4,5,6,7]}`)
	defer ts.Close()

	ids, err := flowsFor(ts).RecommendProducts(context.Background(), []string{"P8"}, catalog)
	require.NoError(t, err)
	assert.Len(t, ids, 5)
}

func TestGenerateDescription(t *testing.T) {
	ts := fakeProvider(t, `{"description": "Akun Canva Pro resmi dengan semua fitur premium."}`)
	defer ts.Close()

	desc, err := flowsFor(ts).GenerateDescription(context.Background(), "Canva Pro", "Desain", []string{"Template premium"})
	require.NoError(t, err)
	assert.Equal(t, "Akun Canva Pro resmi dengan semua fitur premium.", desc)
}

func TestGenerateDescriptionRejectsEmpty(t *testing.T) {
	ts := fakeProvider(t, `{"description": "  "}`)
	defer ts.Close()

	_, err := flowsFor(ts).GenerateDescription(context.Background(), "Canva Pro", "Desain", nil)
	assert.Error(t, err)
}

func TestDisabledFlows(t *testing.T) {
	f := &Flows{}
	assert.False(t, f.Enabled())
	_, err := f.RankProducts(context.Background(), "q", testCatalog)
	assert.Error(t, err)
}
