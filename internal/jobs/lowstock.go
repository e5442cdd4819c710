package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fekuna/omnipos-crm-service/internal/crmclient"
	"github.com/fekuna/omnipos-crm-service/pkg/logger"
)

const lowStockMutation = `mutation {
	updateLowStockProducts {
		message
		updatedProducts { name stock }
		failures { productId reason }
	}
}`

type lowStockResponse struct {
	UpdateLowStockProducts *struct {
		Message         string `json:"message"`
		UpdatedProducts []struct {
			Name  string `json:"name"`
			Stock int    `json:"stock"`
		} `json:"updatedProducts"`
		Failures []struct {
			ProductID string `json:"productId"`
			Reason    string `json:"reason"`
		} `json:"failures"`
	} `json:"updateLowStockProducts"`
}

// LowStock triggers the restock sweep and logs which products were topped up.
type LowStock struct {
	base
}

func NewLowStock(client GraphQL, sink Sink, log logger.ZapLogger, opts ...Option) *LowStock {
	return &LowStock{base: newBase(NameLowStock, client, sink, log, opts)}
}

func (j *LowStock) Name() string { return NameLowStock }

func (j *LowStock) Run(ctx context.Context) {
	ts := j.now().Format(stampLayout)
	ctx, cancel := j.context(ctx)
	defer cancel()

	var out lowStockResponse
	err := j.client.Execute(ctx, lowStockMutation, nil, &out)
	if err == nil && out.UpdateLowStockProducts == nil {
		err = errEmptyResponse
	}

	var b strings.Builder
	var statusErr *crmclient.StatusError
	switch {
	case errors.As(err, &statusErr):
		fmt.Fprintf(&b, "%s - GraphQL ERROR %d: %s\n", ts, statusErr.Status, statusErr.Body)
	case err != nil:
		fmt.Fprintf(&b, "%s - Exception occurred: %s\n", ts, err)
	default:
		res := out.UpdateLowStockProducts
		fmt.Fprintf(&b, "%s - %s\n", ts, res.Message)
		for _, p := range res.UpdatedProducts {
			fmt.Fprintf(&b, "→ %s stock: %d\n", p.Name, p.Stock)
		}
		for _, f := range res.Failures {
			fmt.Fprintf(&b, "✗ %s: %s\n", f.ProductID, f.Reason)
			j.log.Warn("Product not restocked", zap.String("product_id", f.ProductID), zap.String("reason", f.Reason))
		}
	}
	if err != nil {
		j.log.Error("Low stock update failed", zap.Error(err))
	}
	j.write(b.String())
}
