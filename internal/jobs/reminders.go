package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fekuna/omnipos-crm-service/pkg/logger"
)

const recentOrdersQuery = `query RecentOrders($since: String!, $after: String) {
	allOrders(orderDateGte: $since, first: 100, after: $after) {
		pageInfo { hasNextPage endCursor }
		edges { node { id customer { email } } }
	}
}`

type recentOrdersResponse struct {
	AllOrders struct {
		PageInfo struct {
			HasNextPage bool    `json:"hasNextPage"`
			EndCursor   *string `json:"endCursor"`
		} `json:"pageInfo"`
		Edges []struct {
			Node struct {
				ID       string `json:"id"`
				Customer struct {
					Email string `json:"email"`
				} `json:"customer"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"allOrders"`
}

// OrderReminders logs one line per order placed within the look-back window.
type OrderReminders struct {
	base
	window time.Duration
}

func NewOrderReminders(client GraphQL, sink Sink, log logger.ZapLogger, window time.Duration, opts ...Option) *OrderReminders {
	return &OrderReminders{base: newBase(NameOrderReminders, client, sink, log, opts), window: window}
}

func (j *OrderReminders) Name() string { return NameOrderReminders }

func (j *OrderReminders) Run(ctx context.Context) {
	now := j.now()
	ts := now.Format(stampLayout)
	since := now.Add(-j.window).Format(time.DateOnly)

	ctx, cancel := j.context(ctx)
	defer cancel()

	var b strings.Builder
	vars := map[string]any{"since": since}
	count := 0
	for {
		var out recentOrdersResponse
		if err := j.client.Execute(ctx, recentOrdersQuery, vars, &out); err != nil {
			j.log.Error("Order reminders failed", zap.Error(err))
			fmt.Fprintf(&b, "%s - Error while processing reminders: %s\n", ts, err)
			break
		}
		for _, e := range out.AllOrders.Edges {
			fmt.Fprintf(&b, "%s - Order ID: %s - Customer Email: %s\n", ts, e.Node.ID, e.Node.Customer.Email)
			count++
		}
		page := out.AllOrders.PageInfo
		if !page.HasNextPage || page.EndCursor == nil {
			break
		}
		vars["after"] = *page.EndCursor
	}

	j.log.Info("Order reminders processed", zap.Int("orders", count), zap.String("since", since))
	j.write(b.String())
}
