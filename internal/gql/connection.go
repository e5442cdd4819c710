package gql

import (
	"encoding/base64"
	"strconv"
	"strings"

	"github.com/graphql-go/graphql"

	"github.com/fekuna/omnipos-crm-service/internal/apperr"
)

const (
	defaultPageSize = 100
	maxPageSize     = 1000
	cursorPrefix    = "arrayconnection:"
)

type edgeView struct {
	Node   interface{} `json:"node"`
	Cursor string      `json:"cursor"`
}

type pageInfoView struct {
	HasNextPage     bool    `json:"hasNextPage"`
	HasPreviousPage bool    `json:"hasPreviousPage"`
	StartCursor     *string `json:"startCursor"`
	EndCursor       *string `json:"endCursor"`
}

type connectionView struct {
	Edges      []edgeView   `json:"edges"`
	PageInfo   pageInfoView `json:"pageInfo"`
	TotalCount int          `json:"totalCount"`
}

var pageInfoType = graphql.NewObject(graphql.ObjectConfig{
	Name: "PageInfo",
	Fields: graphql.Fields{
		"hasNextPage":     &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"hasPreviousPage": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"startCursor":     &graphql.Field{Type: graphql.String},
		"endCursor":       &graphql.Field{Type: graphql.String},
	},
})

func connectionType(name string, node *graphql.Object) *graphql.Object {
	edge := graphql.NewObject(graphql.ObjectConfig{
		Name: name + "Edge",
		Fields: graphql.Fields{
			"node":   &graphql.Field{Type: node},
			"cursor": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})
	return graphql.NewObject(graphql.ObjectConfig{
		Name: name + "Connection",
		Fields: graphql.Fields{
			"edges":      &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(edge))},
			"pageInfo":   &graphql.Field{Type: graphql.NewNonNull(pageInfoType)},
			"totalCount": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		},
	})
}

// connectionArgs adds first/after to args.
func connectionArgs(args graphql.FieldConfigArgument) graphql.FieldConfigArgument {
	args["first"] = &graphql.ArgumentConfig{Type: graphql.Int}
	args["after"] = &graphql.ArgumentConfig{Type: graphql.String}
	return args
}

func encodeCursor(offset int) string {
	return base64.StdEncoding.EncodeToString([]byte(cursorPrefix + strconv.Itoa(offset)))
}

func decodeCursor(cursor string) (int, bool) {
	raw, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return 0, false
	}
	s, ok := strings.CutPrefix(string(raw), cursorPrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// pageFromArgs converts first/after into offset and limit.
func pageFromArgs(args map[string]interface{}) (offset, limit int, err error) {
	limit = defaultPageSize
	if v, ok := args["first"].(int); ok {
		if v < 0 {
			return 0, 0, apperr.New("gql.page", apperr.KindInvalidArgument, "Argument first cannot be negative.")
		}
		limit = min(v, maxPageSize)
	}
	if v, ok := args["after"].(string); ok && v != "" {
		n, ok := decodeCursor(v)
		if !ok {
			return 0, 0, apperr.New("gql.page", apperr.KindInvalidArgument, "Invalid cursor.")
		}
		offset = n + 1
	}
	return offset, limit, nil
}

func newConnection(nodes []interface{}, offset, total int) *connectionView {
	conn := &connectionView{
		Edges:      make([]edgeView, len(nodes)),
		TotalCount: total,
	}
	for i, n := range nodes {
		conn.Edges[i] = edgeView{Node: n, Cursor: encodeCursor(offset + i)}
	}
	conn.PageInfo.HasPreviousPage = offset > 0
	conn.PageInfo.HasNextPage = offset+len(nodes) < total
	if len(nodes) > 0 {
		start, end := conn.Edges[0].Cursor, conn.Edges[len(nodes)-1].Cursor
		conn.PageInfo.StartCursor = &start
		conn.PageInfo.EndCursor = &end
	}
	return conn
}
