package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"merchantdash/internal/config"
	"merchantdash/internal/model"
	"merchantdash/internal/rules"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestAggregate(t *testing.T) {
	transactions := []*model.Transaction{
		{MerchantID: "M1", Currency: "USD", Type: rules.TypeCharge, Status: rules.StatusSuccess, Amount: 10000, FeeAmount: 300},
		{MerchantID: "M1", Currency: "USD", Type: rules.TypeCapture, Status: rules.StatusAuthorized, Amount: 5000, FeeAmount: 150},
		{MerchantID: "M1", Currency: "USD", Type: rules.TypeRefund, Status: rules.StatusSuccess, Amount: 2500},
		// pending charges do not count as sales but fees still accrue
		{MerchantID: "M1", Currency: "USD", Type: rules.TypeCharge, Status: rules.StatusPending, Amount: 9999, FeeAmount: 100},
		{MerchantID: "M1", Currency: "JPY", Type: rules.TypeCharge, Status: rules.StatusSuccess, Amount: 1500},
		{MerchantID: "M2", Currency: "USD", Type: rules.TypePOSRefund, Status: rules.StatusSuccess, Amount: 700},
	}

	grains := Aggregate(transactions)
	require.Len(t, grains, 3)

	usd := grains[summaryKey{MerchantID: "M1", Currency: "USD"}]
	require.NotNil(t, usd)
	assert.Equal(t, int64(2), usd.SalesCount)
	assert.True(t, usd.SalesAmount.Equal(decimal.RequireFromString("150.00")), "sales %s", usd.SalesAmount)
	assert.Equal(t, int64(1), usd.RefundCount)
	assert.True(t, usd.RefundAmount.Equal(decimal.RequireFromString("25.00")), "refunds %s", usd.RefundAmount)
	assert.True(t, usd.FeeAmount.Equal(decimal.RequireFromString("5.50")), "fees %s", usd.FeeAmount)

	// JPY has no minor unit, so the amount carries over unshifted
	jpy := grains[summaryKey{MerchantID: "M1", Currency: "JPY"}]
	require.NotNil(t, jpy)
	assert.True(t, jpy.SalesAmount.Equal(decimal.NewFromInt(1500)), "jpy sales %s", jpy.SalesAmount)

	m2 := grains[summaryKey{MerchantID: "M2", Currency: "USD"}]
	require.NotNil(t, m2)
	assert.Equal(t, int64(0), m2.SalesCount)
	assert.Equal(t, int64(1), m2.RefundCount)
	assert.True(t, m2.RefundAmount.Equal(decimal.RequireFromString("7.00")), "m2 refunds %s", m2.RefundAmount)
}

func TestAggregateEmpty(t *testing.T) {
	grains := Aggregate(nil)
	assert.Empty(t, grains)
}

func newSummaryTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.SettlementSummary{}))
	return db
}

func TestBuildMonthlyRollsUpDailyRows(t *testing.T) {
	db := newSummaryTestDB(t)
	svc := NewSummaryService(db, &config.Config{}, zap.NewNop())
	ctx := context.Background()

	day := func(d int) time.Time {
		return time.Date(2026, 8, d, 0, 0, 0, 0, time.UTC)
	}
	dailies := []*model.SettlementSummary{
		{MerchantID: "M1", Currency: "USD", Period: model.SummaryPeriodDaily, SummaryDate: day(5),
			SalesCount: 2, SalesAmount: decimal.RequireFromString("100.50"),
			RefundCount: 1, RefundAmount: decimal.RequireFromString("10.00"),
			FeeAmount: decimal.RequireFromString("3.00"), NetAmount: decimal.RequireFromString("87.50")},
		{MerchantID: "M1", Currency: "USD", Period: model.SummaryPeriodDaily, SummaryDate: day(12),
			SalesCount: 1, SalesAmount: decimal.RequireFromString("50.25"),
			FeeAmount: decimal.RequireFromString("1.50"), NetAmount: decimal.RequireFromString("48.75")},
		{MerchantID: "M2", Currency: "JPY", Period: model.SummaryPeriodDaily, SummaryDate: day(5),
			SalesCount: 4, SalesAmount: decimal.NewFromInt(9000), NetAmount: decimal.NewFromInt(9000)},
	}
	for _, d := range dailies {
		require.NoError(t, db.Create(d).Error)
	}

	require.NoError(t, svc.BuildMonthly(ctx, day(15)))

	monthStart := day(1)
	monthEnd := monthStart.AddDate(0, 1, 0)

	// the rollup must see every merchant's daily rows, not just one
	all, err := svc.Monthly(ctx, "", "", monthStart, monthEnd)
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)

	m1, err := svc.Monthly(ctx, "M1", "USD", monthStart, monthEnd)
	require.NoError(t, err)
	require.Len(t, m1.Items, 1)
	row := m1.Items[0]
	assert.Equal(t, int64(3), row.SalesCount)
	assert.True(t, row.SalesAmount.Equal(decimal.RequireFromString("150.75")), "sales %s", row.SalesAmount)
	assert.Equal(t, int64(1), row.RefundCount)
	assert.True(t, row.NetAmount.Equal(decimal.RequireFromString("136.25")), "net %s", row.NetAmount)
	assert.True(t, row.SummaryDate.Equal(monthStart), "summary date %s", row.SummaryDate)

	// rebuilding upserts the same grain instead of duplicating it
	require.NoError(t, svc.BuildMonthly(ctx, day(20)))
	all, err = svc.Monthly(ctx, "", "", monthStart, monthEnd)
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)
}
