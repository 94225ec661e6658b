package controllers

import (
	"strings"
	"sync"
	"time"

	"github.com/nadifalfairuz/digistore/ai"
	"github.com/nadifalfairuz/digistore/config"
	"github.com/nadifalfairuz/digistore/models"
	"github.com/nadifalfairuz/digistore/utils"

	"github.com/gin-gonic/gin"
)

var (
	aiOnce  sync.Once
	aiFlows *ai.Flows
)

// flows lazily builds the AI client so the environment is loaded first.
func flows() *ai.Flows {
	aiOnce.Do(func() {
		aiFlows = ai.New()
		if aiFlows.Enabled() {
			utils.LogInfo("AI flows enabled")
		} else {
			utils.LogInfo("OPENAI_API_KEY not set, AI flows run in fallback mode")
		}
	})
	return aiFlows
}

func catalogDigest() ([]models.Product, []ai.ProductDigest, error) {
	now := time.Now()
	var products []models.Product
	if err := config.DB.Find(&products).Error; err != nil {
		return nil, nil, err
	}
	digest := make([]ai.ProductDigest, 0, len(products))
	for i := range products {
		digest = append(digest, ai.ProductDigest{
			ID:       products[i].ID,
			Name:     products[i].Name,
			Category: products[i].Category,
			Price:    products[i].EffectivePrice(now),
		})
	}
	return products, digest, nil
}

func productsByID(products []models.Product, ids []uint) []models.Product {
	byID := make(map[uint]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	picked := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			picked = append(picked, *p)
		}
	}
	return picked
}

// SearchProducts answers a free-text query. With AI enabled the model
// ranks catalog matches; otherwise, or when the model fails, a plain
// name filter serves the results.
func SearchProducts(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		utils.BadRequest(c, "A search query is required", nil)
		return
	}
	utils.LogInfo("SearchProducts called: %q", query)

	now := time.Now()
	products, digest, err := catalogDigest()
	if err != nil {
		utils.LogError("Failed to load catalog for search: %v", err)
		utils.InternalServerError(c, "Search is unavailable", nil)
		return
	}

	f := flows()
	if f.Enabled() {
		ids, err := f.RankProducts(c.Request.Context(), query, digest)
		if err == nil && len(ids) > 0 {
			matched := productsByID(products, ids)
			views := make([]gin.H, 0, len(matched))
			for i := range matched {
				views = append(views, productView(&matched[i], now))
			}
			utils.Success(c, "Search results", gin.H{"results": views, "mode": "ai"})
			return
		}
		if err != nil {
			utils.LogError("AI search failed, falling back to filter: %v", err)
		}
	}

	lowered := strings.ToLower(query)
	views := make([]gin.H, 0)
	for i := range products {
		p := &products[i]
		if strings.Contains(strings.ToLower(p.Name), lowered) ||
			strings.Contains(strings.ToLower(p.Category), lowered) {
			views = append(views, productView(p, now))
		}
	}
	utils.Success(c, "Search results", gin.H{"results": views, "mode": "filter"})
}

// RecommendProducts suggests products for a wallet holder based on their
// completed purchases. Without AI, or with no purchase history, the best
// sellers serve as the recommendation.
func RecommendProducts(c *gin.Context) {
	key := c.Param("key")

	var pk models.PaymentKey
	if err := config.DB.Where("key = ?", key).First(&pk).Error; err != nil {
		utils.NotFound(c, "Payment key not found")
		return
	}

	now := time.Now()
	products, digest, err := catalogDigest()
	if err != nil {
		utils.LogError("Failed to load catalog for recommendations: %v", err)
		utils.InternalServerError(c, "Recommendations are unavailable", nil)
		return
	}

	var history []string
	config.DB.Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.customer_email = ? AND orders.status = ?", pk.Email, models.OrderStatusCompleted).
		Distinct().
		Limit(20).
		Pluck("order_items.name", &history)

	f := flows()
	if f.Enabled() && len(history) > 0 {
		ids, err := f.RecommendProducts(c.Request.Context(), history, digest)
		if err == nil && len(ids) > 0 {
			matched := productsByID(products, ids)
			views := make([]gin.H, 0, len(matched))
			for i := range matched {
				views = append(views, productView(&matched[i], now))
			}
			utils.Success(c, "Recommendations", gin.H{"results": views, "mode": "ai"})
			return
		}
		if err != nil {
			utils.LogError("AI recommendation failed, falling back to best sellers: %v", err)
		}
	}

	var best []models.Product
	config.DB.Order("sold_count DESC").Limit(5).Find(&best)
	views := make([]gin.H, 0, len(best))
	for i := range best {
		views = append(views, productView(&best[i], now))
	}
	utils.Success(c, "Recommendations", gin.H{"results": views, "mode": "best_seller"})
}

// GenerateProductDescription drafts marketing copy for the back office.
// The admin reviews the text before saving it onto the product.
func GenerateProductDescription(c *gin.Context) {
	var req struct {
		Name     string   `json:"name" binding:"required"`
		Category string   `json:"category" binding:"required"`
		Features []string `json:"features"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "name and category are required", err.Error())
		return
	}

	f := flows()
	if !f.Enabled() {
		utils.Error(c, 503, "AI description generation is not configured", nil)
		return
	}

	desc, err := f.GenerateDescription(c.Request.Context(), req.Name, req.Category, req.Features)
	if err != nil {
		utils.LogError("Description generation failed for %s: %v", req.Name, err)
		utils.InternalServerError(c, "Failed to generate description", nil)
		return
	}

	utils.Success(c, "Description generated", gin.H{"description": desc})
}
