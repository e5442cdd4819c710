package jobs

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fekuna/omnipos-crm-service/pkg/logger"
)

const helloQuery = `{ hello }`

// Heartbeat records that the service is alive and whether GraphQL answered.
type Heartbeat struct {
	base
}

func NewHeartbeat(client GraphQL, sink Sink, log logger.ZapLogger, opts ...Option) *Heartbeat {
	return &Heartbeat{base: newBase(NameHeartbeat, client, sink, log, opts)}
}

func (j *Heartbeat) Name() string { return NameHeartbeat }

func (j *Heartbeat) Run(ctx context.Context) {
	ts := j.now().Format(heartbeatLayout)
	ctx, cancel := j.context(ctx)
	defer cancel()

	var out struct {
		Hello *string `json:"hello"`
	}
	status := ""
	switch err := j.client.Execute(ctx, helloQuery, nil, &out); {
	case err != nil:
		j.log.Warn("Heartbeat query failed", zap.Error(err))
		status = "GraphQL TIMEOUT"
	case out.Hello == nil:
		status = "GraphQL RESPONSE ERROR"
	default:
		status = "GraphQL OK: " + *out.Hello
	}
	j.write(fmt.Sprintf("%s CRM is alive (%s)\n", ts, status))
}
