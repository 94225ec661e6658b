package controllers

import (
	"context"
	"time"

	"github.com/nadifalfairuz/digistore/config"
	"github.com/nadifalfairuz/digistore/gateway"
	"github.com/nadifalfairuz/digistore/models"
	"github.com/nadifalfairuz/digistore/utils"
)

const watcherInterval = 5 * time.Second

// StartPaymentWatcher runs the background confirmation loop. Every tick
// it sweeps pending payments and topups: expired ones are closed,
// in-window ones are checked against the gateway and finalized on
// success. Returns when ctx is cancelled.
func StartPaymentWatcher(ctx context.Context) {
	utils.LogInfo("Payment watcher started, interval %s", watcherInterval)
	ticker := time.NewTicker(watcherInterval)
	defer ticker.Stop()

	client := gateway.NewClient()
	for {
		select {
		case <-ctx.Done():
			utils.LogInfo("Payment watcher stopping")
			return
		case <-ticker.C:
			sweepPendingPayments(ctx, client)
			sweepPendingTopups(ctx, client)
		}
	}
}

func sweepPendingPayments(ctx context.Context, client *gateway.Client) {
	var pending []models.Payment
	if err := config.DB.Where("status = ?", models.PaymentStatusPending).
		Limit(100).Find(&pending).Error; err != nil {
		utils.LogError("Watcher failed to load pending payments: %v", err)
		return
	}

	for i := range pending {
		if ctx.Err() != nil {
			return
		}
		verifyAndFinalize(ctx, client, &pending[i])
	}
}

func sweepPendingTopups(ctx context.Context, client *gateway.Client) {
	now := time.Now()

	var pending []models.TopupOrder
	if err := config.DB.Where("status = ?", models.TopupStatusPending).
		Limit(100).Find(&pending).Error; err != nil {
		utils.LogError("Watcher failed to load pending topups: %v", err)
		return
	}

	for i := range pending {
		if ctx.Err() != nil {
			return
		}
		topup := &pending[i]

		if now.After(topup.ExpiresAt) {
			markTopupExpired(topup.GatewayOrderID)
			continue
		}

		txn, err := client.TransactionStatus(ctx, topup.GatewayOrderID, topup.Amount)
		if err != nil {
			utils.LogDebug("Watcher status check failed for topup %s: %v", topup.GatewayOrderID, err)
			continue
		}
		if !gateway.IsSuccess(txn.Status) {
			continue
		}
		if err := finalizeTopup(topup.GatewayOrderID, txn.Amount); err != nil {
			utils.LogError("Watcher failed to finalize topup %s: %v", topup.GatewayOrderID, err)
		}
	}
}
