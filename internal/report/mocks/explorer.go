// Package mocks contains testify doubles for the report package ports.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/intelligenceonchain/tornadoview/internal/report"
	"github.com/intelligenceonchain/tornadoview/internal/withdrawal"
)

// Explorer is a mock implementation of report.Explorer.
type Explorer struct {
	mock.Mock
}

var _ report.Explorer = (*Explorer)(nil)

// FetchWithdrawals provides a mock function with given fields.
func (m *Explorer) FetchWithdrawals(ctx context.Context, pool withdrawal.Pool, rng report.TimeRange) ([]withdrawal.Event, error) {
	args := m.Called(ctx, pool, rng)

	var events []withdrawal.Event
	if v := args.Get(0); v != nil {
		events = v.([]withdrawal.Event)
	}
	return events, args.Error(1)
}
