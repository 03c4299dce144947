// Package creature holds the persisted agent record and the actions that
// mutate it. Actions validate first and mutate only on success.
package creature

import (
	"errors"
	"math"
)

const (
	MaxEnergy = 100

	// WorkEnergyFloor is the minimum energy needed to work.
	WorkEnergyFloor = 20
	WorkEnergyCost  = 25
	WorkHungerGain  = 20

	// MealCost is what one meal costs in cash.
	MealCost         = 20.0
	MealHungerRelief = 30
	MealEnergyGain   = 10

	SleepHungerGain = 10

	// Salary bounds for one shift, [MinSalary, MaxSalary).
	MinSalary = 30.0
	MaxSalary = 60.0
)

var (
	ErrExhausted        = errors.New("energy too low to work")
	ErrInsufficientCash = errors.New("insufficient cash")
	ErrEmptyWallet      = errors.New("wallet is empty")
	ErrInvalidAmount    = errors.New("amount must be positive")
)

// State is the creature record.
type State struct {
	Name        string
	Energy      uint32
	Hunger      uint32
	Cash        float64
	Wallet      float64
	Knowledge   uint32
	TotalEarned uint64
	Alive       bool
}

// New returns a freshly born creature.
func New(name string) State {
	return State{
		Name:   name,
		Energy: MaxEnergy,
		Alive:  true,
	}
}

func subSat(v, d uint32) uint32 {
	if d >= v {
		return 0
	}
	return v - d
}

// Work spends energy for a salary. salary is supplied by the caller so the
// random draw stays outside the record.
func (s *State) Work(salary float64) (float64, error) {
	if s.Energy < WorkEnergyFloor {
		return 0, ErrExhausted
	}
	s.Cash += salary
	s.TotalEarned += uint64(salary)
	s.Energy = subSat(s.Energy, WorkEnergyCost)
	s.Hunger += WorkHungerGain
	return salary, nil
}

// Eat buys one meal.
func (s *State) Eat() error {
	if s.Cash < MealCost {
		return ErrInsufficientCash
	}
	s.Cash -= MealCost
	s.Hunger = subSat(s.Hunger, MealHungerRelief)
	s.Energy = min(s.Energy+MealEnergyGain, MaxEnergy)
	return nil
}

// Sleep restores energy fully.
func (s *State) Sleep() {
	s.Energy = MaxEnergy
	s.Hunger += SleepHungerGain
}

// CanAfford reports whether amount can be spent on a purchase. Checked
// before fetching a quote so a refused buy costs no network call.
func (s *State) CanAfford(amount float64) error {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return ErrInvalidAmount
	}
	if amount > s.Cash {
		return ErrInsufficientCash
	}
	return nil
}

// Buy converts amount of cash into the tracked asset at price.
// It returns the units bought.
func (s *State) Buy(amount, price float64) (float64, error) {
	if err := s.CanAfford(amount); err != nil {
		return 0, err
	}
	if !validPrice(price) {
		return 0, ErrInvalidAmount
	}
	units := amount / price
	s.Cash -= amount
	s.Wallet += units
	return units, nil
}

func validPrice(price float64) bool {
	return price > 0 && !math.IsInf(price, 1)
}

// HasHoldings reports whether there is anything to sell.
func (s *State) HasHoldings() bool {
	return s.Wallet > 0
}

// SellAll liquidates the whole wallet at price and returns the proceeds.
func (s *State) SellAll(price float64) (float64, error) {
	if !s.HasHoldings() {
		return 0, ErrEmptyWallet
	}
	if !validPrice(price) {
		return 0, ErrInvalidAmount
	}
	total := s.Wallet * price
	s.Wallet = 0
	s.Cash += total
	return total, nil
}

// WalletValue is the cash value of the wallet at price.
func (s *State) WalletValue(price float64) float64 {
	return s.Wallet * price
}
