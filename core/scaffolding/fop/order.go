// Package fop holds the filter, order and page values shared by repositories
// and the bridges that parse them from query strings.
package fop

import (
	"fmt"
	"strings"
)

const (
	ASC  = "ASC"
	DESC = "DESC"
)

// By is a requested ordering.
type By struct {
	Field     string
	Direction string
}

// NewBy builds an order value. An empty direction means ascending.
func NewBy(field, direction string) By {
	if direction == "" {
		direction = ASC
	}
	return By{Field: field, Direction: strings.ToUpper(direction)}
}

func (b By) Descending() bool {
	return b.Direction == DESC
}

// ParseOrder parses "field" or "field,direction". Field names are mapped
// through allowed, so callers can expose different names than they sort on.
func ParseOrder(allowed map[string]string, orderBy string, defaultOrder By) (By, error) {
	if orderBy == "" {
		return defaultOrder, nil
	}

	orderParts := strings.Split(orderBy, ",")

	field, exists := allowed[strings.TrimSpace(orderParts[0])]
	if !exists {
		return By{}, fmt.Errorf("unknown order: %s", orderParts[0])
	}

	switch len(orderParts) {
	case 1:
		return NewBy(field, ASC), nil

	case 2:
		dir := strings.ToUpper(strings.TrimSpace(orderParts[1]))
		if dir != ASC && dir != DESC {
			return By{}, fmt.Errorf("unknown direction: %s", orderParts[1])
		}
		return NewBy(field, dir), nil

	default:
		return By{}, fmt.Errorf("unknown order: %s", orderBy)
	}
}
