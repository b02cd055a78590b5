package portfolio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/polyview/internal/domain"
)

var now = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func TestMetrics(t *testing.T) {
	m := Metrics(domain.Position{Size: 50, AvgPrice: 0.4, CurrentPrice: 0.6})

	assert.Equal(t, "20.00", m.Bet.StringFixed(2))
	assert.Equal(t, "30.00", m.Value.StringFixed(2))
	assert.Equal(t, "10.00", m.PnL.StringFixed(2))
	assert.Equal(t, "50.00", m.PnLPercent.StringFixed(2))
	assert.Equal(t, "50", m.ToWin.String())
}

func TestMetrics_ZeroBet(t *testing.T) {
	m := Metrics(domain.Position{Size: 10, AvgPrice: 0, CurrentPrice: 0.5})
	assert.True(t, m.PnLPercent.IsZero())
	assert.Equal(t, "5.00", m.PnL.StringFixed(2))
}

func TestAggregate_TotalsFromSums(t *testing.T) {
	past := now.Add(-time.Hour)
	future := now.Add(24 * time.Hour)
	positions := []domain.Position{
		{ConditionID: "a", Size: 50, AvgPrice: 0.4, CurrentPrice: 0.6},
		{ConditionID: "b", Size: 100, AvgPrice: 0.1, CurrentPrice: 0.05, EndDate: &future},
		{ConditionID: "closed", Size: 0, AvgPrice: 0.5, CurrentPrice: 1},
		{ConditionID: "ended", Size: 10, AvgPrice: 0.5, CurrentPrice: 1, EndDate: &past},
	}

	sum := Aggregate(positions, now)

	require.Len(t, sum.Positions, 2)
	assert.Equal(t, "a", sum.Positions[0].Position.ConditionID)
	assert.Equal(t, "b", sum.Positions[1].Position.ConditionID)

	tot := sum.Totals
	assert.Equal(t, 2, tot.Count)
	assert.Equal(t, "30.00", tot.Bet.StringFixed(2))
	assert.Equal(t, "150.00", tot.ToWin.StringFixed(2))
	assert.Equal(t, "35.00", tot.Value.StringFixed(2))
	assert.Equal(t, "5.00", tot.PnL.StringFixed(2))
	// 5/30, not the mean of +50% and -50%.
	assert.Equal(t, "16.67", tot.PnLPercent.StringFixed(2))
}

func TestAggregate_Empty(t *testing.T) {
	sum := Aggregate(nil, now)
	assert.Empty(t, sum.Positions)
	assert.True(t, sum.Totals.Bet.IsZero())
	assert.True(t, sum.Totals.PnLPercent.IsZero())
}
