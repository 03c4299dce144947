package creature

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	s := New("Athena")
	assert.Equal(t, State{Name: "Athena", Energy: 100, Alive: true}, s)
}

func TestWork(t *testing.T) {
	s := New("Athena")

	got, err := s.Work(45.7)
	require.NoError(t, err)
	assert.Equal(t, 45.7, got)
	assert.Equal(t, 45.7, s.Cash)
	assert.Equal(t, uint64(45), s.TotalEarned)
	assert.Equal(t, uint32(75), s.Energy)
	assert.Equal(t, uint32(20), s.Hunger)
}

func TestWork_RefusesBelowFloor(t *testing.T) {
	s := New("Athena")
	s.Energy = 19
	s.Cash = 3
	before := s

	_, err := s.Work(50)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, before, s)
}

func TestWork_EnergySaturatesAtZero(t *testing.T) {
	s := New("Athena")
	s.Energy = 20

	_, err := s.Work(30)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), s.Energy)
}

func TestEat(t *testing.T) {
	s := New("Athena")
	s.Cash = 25
	s.Hunger = 10
	s.Energy = 95

	require.NoError(t, s.Eat())
	assert.Equal(t, 5.0, s.Cash)
	assert.Equal(t, uint32(0), s.Hunger)
	assert.Equal(t, uint32(100), s.Energy)
}

func TestEat_RefusesWithoutCash(t *testing.T) {
	s := New("Athena")
	s.Cash = 19.99
	s.Hunger = 40
	s.Energy = 30
	before := s

	assert.ErrorIs(t, s.Eat(), ErrInsufficientCash)
	assert.Equal(t, before, s)
}

func TestEat_ExactlyTwenty(t *testing.T) {
	s := New("Athena")
	s.Cash = 20
	require.NoError(t, s.Eat())
	assert.Equal(t, 0.0, s.Cash)
}

func TestSleep(t *testing.T) {
	s := New("Athena")
	s.Energy = 5
	s.Hunger = 7

	s.Sleep()
	assert.Equal(t, uint32(100), s.Energy)
	assert.Equal(t, uint32(17), s.Hunger)
}

func TestBuy(t *testing.T) {
	s := New("Athena")
	s.Cash = 100

	units, err := s.Buy(50, 250000)
	require.NoError(t, err)
	assert.InDelta(t, 0.0002, units, 1e-12)
	assert.Equal(t, 50.0, s.Cash)
	assert.InDelta(t, 0.0002, s.Wallet, 1e-12)
}

func TestBuy_RefusesOverCash(t *testing.T) {
	s := New("Athena")
	s.Cash = 10
	before := s

	_, err := s.Buy(10.01, 250000)
	assert.ErrorIs(t, err, ErrInsufficientCash)
	assert.Equal(t, before, s)

	assert.ErrorIs(t, s.CanAfford(10.01), ErrInsufficientCash)
	assert.NoError(t, s.CanAfford(10))
}

func TestBuy_RefusesInvalid(t *testing.T) {
	s := New("Athena")
	s.Cash = 10

	_, err := s.Buy(0, 250000)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = s.Buy(-5, 250000)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = s.Buy(5, 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.Equal(t, 10.0, s.Cash)
}

func TestBuyAndSell_RejectNonFinitePrice(t *testing.T) {
	prices := []struct {
		name  string
		price float64
	}{
		{"NaN", math.NaN()},
		{"+Inf", math.Inf(1)},
		{"-Inf", math.Inf(-1)},
	}
	for _, tt := range prices {
		t.Run(tt.name, func(t *testing.T) {
			s := New("Athena")
			s.Cash = 100
			s.Wallet = 0.25
			before := s

			_, err := s.Buy(50, tt.price)
			assert.ErrorIs(t, err, ErrInvalidAmount)
			_, err = s.SellAll(tt.price)
			assert.ErrorIs(t, err, ErrInvalidAmount)
			assert.Equal(t, before, s)
			assert.True(t, s.HasHoldings())
		})
	}
}

func TestSellAll(t *testing.T) {
	s := New("Athena")
	s.Wallet = 0.5
	s.Cash = 1

	total, err := s.SellAll(200)
	require.NoError(t, err)
	assert.Equal(t, 100.0, total)
	assert.Equal(t, 0.0, s.Wallet)
	assert.Equal(t, 101.0, s.Cash)
}

func TestSellAll_EmptyWalletIsNoop(t *testing.T) {
	s := New("Athena")
	s.Cash = 42
	before := s

	_, err := s.SellAll(200)
	assert.ErrorIs(t, err, ErrEmptyWallet)
	assert.Equal(t, before, s)
	assert.False(t, s.HasHoldings())
}
