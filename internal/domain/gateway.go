package domain

import "context"

// MarketData is the read-only view of the Polymarket data API that the
// history and position services depend on.
type MarketData interface {
	Trades(ctx context.Context, user string, limit, offset int) ([]ActivityRecord, error)
	Activity(ctx context.Context, q ActivityQuery) ([]ActivityRecord, error)
	Positions(ctx context.Context, user string) ([]Position, error)
	ClosedPositions(ctx context.Context, q ClosedPositionsQuery) ([]ClosedPosition, error)
}
