package ledger

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/geofarm/internal/model"
)

var t0 = time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

func openMemory(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleTxs() []model.Transaction {
	return []model.Transaction{
		{ID: "tx-1", Type: model.TxPurchase, Amount: -20000, Description: "Purchased Fazenda Verde", Timestamp: t0, RelatedEntity: "prop-1"},
		{ID: "tx-2", Type: model.TxSale, Amount: 0.1, Description: "Sold", Timestamp: t0.Add(time.Hour)},
		{ID: "tx-3", Type: model.TxSale, Amount: 0.2, Description: "Sold", Timestamp: t0.Add(2 * time.Hour)},
		{ID: "tx-4", Type: model.TxTax, Amount: -200, Description: "Property tax (1 properties)", Timestamp: t0.Add(3 * time.Hour)},
	}
}

func TestRecordAndReadTransactions(t *testing.T) {
	db := openMemory(t)
	require.NoError(t, db.RecordTransactions(sampleTxs()))
	// Re-recording is idempotent.
	require.NoError(t, db.RecordTransactions(sampleTxs()[:2]))

	recent, err := db.RecentTransactions(10)
	require.NoError(t, err)
	require.Len(t, recent, 4)
	assert.Equal(t, "tx-4", recent[0].ID)
	assert.Equal(t, "tx-1", recent[3].ID)
	assert.Equal(t, -20000.0, recent[3].Amount)
	assert.Equal(t, "prop-1", recent[3].RelatedEntity)
	assert.True(t, t0.Equal(recent[3].Timestamp))

	recent, err = db.RecentTransactions(2)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

func TestSummaryUsesExactSums(t *testing.T) {
	db := openMemory(t)
	require.NoError(t, db.RecordTransactions(sampleTxs()))

	s, err := db.Summary(time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 4, s.Count)
	assert.True(t, s.Totals[model.TxSale].Equal(decimal.RequireFromString("0.3")), s.Totals[model.TxSale].String())
	assert.True(t, s.Totals[model.TxPurchase].Equal(decimal.NewFromInt(-20000)))
	assert.True(t, s.Income.Equal(decimal.RequireFromString("0.3")))
	assert.True(t, s.Expenses.Equal(decimal.NewFromInt(20200)))
	assert.True(t, s.Net.Equal(decimal.RequireFromString("-20199.7")))

	s, err = db.Summary(t0.Add(2 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, s.Count)
	_, hasPurchase := s.Totals[model.TxPurchase]
	assert.False(t, hasPurchase)
}

func TestNetWorthHistory(t *testing.T) {
	db := openMemory(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, db.RecordNetWorth(t0.Add(time.Duration(i)*time.Hour), 50000+float64(i)*100, 40000))
	}

	h, err := db.NetWorthHistory(3)
	require.NoError(t, err)
	require.Len(t, h, 3)
	assert.True(t, t0.Add(2*time.Hour).Equal(h[0].At))
	assert.Equal(t, 50400.0, h[2].NetWorth)
	assert.Equal(t, 40000.0, h[2].Balance)
}

func TestMeta(t *testing.T) {
	db := openMemory(t)
	require.NoError(t, db.SaveMeta("player", "Ana"))
	require.NoError(t, db.SaveMeta("player", "Bia"))
	v, err := db.GetMeta("player")
	require.NoError(t, err)
	assert.Equal(t, "Bia", v)

	_, err = db.GetMeta("missing")
	assert.Error(t, err)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.RecordTransactions(sampleTxs()))
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
	recent, err := db.RecentTransactions(10)
	require.NoError(t, err)
	assert.Len(t, recent, 4)
}

type fakeSource struct {
	txs []model.Transaction
	now time.Time
}

func (f *fakeSource) TransactionsSince(cursor int) ([]model.Transaction, int) {
	return append([]model.Transaction(nil), f.txs[cursor:]...), len(f.txs)
}
func (f *fakeSource) NetWorth() float64 { return 1234.5 }
func (f *fakeSource) Player() model.Player {
	return model.Player{Balance: 1000}
}
func (f *fakeSource) Now() time.Time { return f.now }

func TestJournalFlush(t *testing.T) {
	db := openMemory(t)
	src := &fakeSource{txs: sampleTxs()[:2], now: t0}
	j := NewJournal(db, src)

	require.NoError(t, j.Flush())
	src.txs = sampleTxs()
	src.now = t0.Add(time.Hour)
	require.NoError(t, j.Flush())

	s, err := db.Summary(time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 4, s.Count)

	h, err := db.NetWorthHistory(10)
	require.NoError(t, err)
	require.Len(t, h, 2)
	assert.Equal(t, 1234.5, h[1].NetWorth)

	last, err := db.GetMeta("last_flush")
	require.NoError(t, err)
	assert.Equal(t, "2026-02-01T10:00:00Z", last)
}
