package referral

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBook() *Book {
	return NewBook(solana.NewWallet().PublicKey())
}

func TestRegisterIsIdempotent(t *testing.T) {
	book := testBook()
	referrer := solana.NewWallet().PublicKey()

	addr1, created, err := book.Register(referrer)
	require.NoError(t, err)
	assert.True(t, created)

	require.NoError(t, book.Credit(addr1, 42))

	addr2, created2, err := book.Register(referrer)
	require.NoError(t, err)
	assert.False(t, created2)
	assert.Equal(t, addr1, addr2)

	// Re-registering must not reset earnings.
	rec, err := book.Resolve(addr1)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), rec.TotalEarned)
	assert.Equal(t, uint64(1), rec.TradeCount)
}

func TestResolveUnknownAddress(t *testing.T) {
	book := testBook()
	_, err := book.Resolve(solana.NewWallet().PublicKey())
	assert.ErrorIs(t, err, ErrNotRegistered)
}

func TestResolveReturnsRegisteredRecord(t *testing.T) {
	book := testBook()
	referrer := solana.NewWallet().PublicKey()

	addr, _, err := book.Register(referrer)
	require.NoError(t, err)

	rec, err := book.Resolve(addr)
	require.NoError(t, err)
	assert.Equal(t, referrer, rec.Referrer)
	assert.Zero(t, rec.TotalEarned)
}

func TestDerivedAddressesDifferPerProgram(t *testing.T) {
	referrer := solana.NewWallet().PublicKey()

	a, err := testBook().DeriveAddress(referrer)
	require.NoError(t, err)
	b, err := testBook().DeriveAddress(referrer)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestCreditIsMonotonic(t *testing.T) {
	book := testBook()
	addr, _, err := book.Register(solana.NewWallet().PublicKey())
	require.NoError(t, err)

	require.NoError(t, book.Credit(addr, 10))
	require.NoError(t, book.Credit(addr, 5))

	rec, err := book.Resolve(addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(15), rec.TotalEarned)
	assert.Equal(t, uint64(2), rec.TradeCount)

	assert.ErrorIs(t, book.Credit(solana.NewWallet().PublicKey(), 1), ErrNotRegistered)
}
