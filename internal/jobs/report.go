package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fekuna/omnipos-crm-service/internal/crmclient"
	"github.com/fekuna/omnipos-crm-service/pkg/logger"
)

const reportQuery = `query { totalCustomers totalOrders totalRevenue }`

// CRMReport writes the weekly totals line.
type CRMReport struct {
	base
}

func NewCRMReport(client GraphQL, sink Sink, log logger.ZapLogger, opts ...Option) *CRMReport {
	return &CRMReport{base: newBase(NameCRMReport, client, sink, log, opts)}
}

func (j *CRMReport) Name() string { return NameCRMReport }

func (j *CRMReport) Run(ctx context.Context) {
	ts := j.now().Format(stampLayout)
	ctx, cancel := j.context(ctx)
	defer cancel()

	var out struct {
		TotalCustomers json.Number `json:"totalCustomers"`
		TotalOrders    json.Number `json:"totalOrders"`
		TotalRevenue   string      `json:"totalRevenue"`
	}
	err := j.client.Execute(ctx, reportQuery, nil, &out)
	if err == nil && out.TotalCustomers == "" {
		err = errEmptyResponse
	}

	var line string
	var statusErr *crmclient.StatusError
	switch {
	case errors.As(err, &statusErr):
		line = fmt.Sprintf("%s - ERROR %d: %s\n", ts, statusErr.Status, statusErr.Body)
	case err != nil:
		line = fmt.Sprintf("%s - Exception: %s\n", ts, err)
	default:
		line = fmt.Sprintf("%s - Report: %s customers, %s orders, %s revenue\n",
			ts, out.TotalCustomers, out.TotalOrders, out.TotalRevenue)
	}
	if err != nil {
		j.log.Error("CRM report failed", zap.Error(err))
	}
	j.write(line)
}
