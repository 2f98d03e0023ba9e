// Package wheel provides the spin randomness for the phrase-guessing game:
// a sector wheel whose outcomes are cash values or the special LOSE TURN and
// BANKRUPT sectors.
package wheel

import (
	"fmt"

	"go.uber.org/zap"
)

// SectorKind classifies a wheel sector.
type SectorKind int

const (
	// SectorCash awards its Value per revealed letter on the next guess.
	SectorCash SectorKind = iota
	// SectorLoseTurn ends the current player's turn.
	SectorLoseTurn
	// SectorBankrupt zeroes the current player's round score and ends the turn.
	SectorBankrupt
)

// Sector is a single wedge on the wheel.
//
// Invariant: Value > 0 when Kind == SectorCash, Value == 0 otherwise.
type Sector struct {
	Kind  SectorKind
	Value int
}

// String returns the label a caller would show for the sector, e.g. "$500",
// "LOSE TURN", or "BANKRUPT".
func (s Sector) String() string {
	switch s.Kind {
	case SectorLoseTurn:
		return "LOSE TURN"
	case SectorBankrupt:
		return "BANKRUPT"
	default:
		return fmt.Sprintf("$%d", s.Value)
	}
}

// Source is the randomness provider for wheel spins.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Wheel selects sectors at random and logs every spin.
type Wheel struct {
	sectors []Sector
	src     Source
	logger  *zap.Logger
}

// New creates a Wheel over the given sectors.
//
// Precondition: sectors must be non-empty and contain at least one cash
// sector; src and logger must be non-nil.
func New(sectors []Sector, src Source, logger *zap.Logger) (*Wheel, error) {
	if len(sectors) == 0 {
		return nil, fmt.Errorf("wheel: no sectors")
	}
	cash := 0
	for _, s := range sectors {
		if s.Kind == SectorCash {
			if s.Value <= 0 {
				return nil, fmt.Errorf("wheel: cash sector with value %d", s.Value)
			}
			cash++
		}
	}
	if cash == 0 {
		return nil, fmt.Errorf("wheel: no cash sectors")
	}
	owned := make([]Sector, len(sectors))
	copy(owned, sectors)
	return &Wheel{sectors: owned, src: src, logger: logger}, nil
}

// Spin returns a uniformly random sector and logs it at debug level.
//
// Postcondition: the returned sector is one of the wheel's sectors.
func (w *Wheel) Spin() Sector {
	s := w.sectors[w.src.Intn(len(w.sectors))]
	w.logger.Debug("wheel spin",
		zap.String("sector", s.String()),
		zap.Int("value", s.Value),
	)
	return s
}

// Sectors builds a sector list from cash values plus counts of the special
// sectors. Used by configuration loading.
//
// Postcondition: len(result) == len(cash) + loseTurns + bankrupts.
func Sectors(cash []int, loseTurns, bankrupts int) []Sector {
	out := make([]Sector, 0, len(cash)+loseTurns+bankrupts)
	for _, v := range cash {
		out = append(out, Sector{Kind: SectorCash, Value: v})
	}
	for i := 0; i < loseTurns; i++ {
		out = append(out, Sector{Kind: SectorLoseTurn})
	}
	for i := 0; i < bankrupts; i++ {
		out = append(out, Sector{Kind: SectorBankrupt})
	}
	return out
}

// DefaultSectors returns the stock 24-wedge wheel: twenty cash values from
// $100 to $2500, two LOSE TURN wedges, and two BANKRUPT wedges.
func DefaultSectors() []Sector {
	return Sectors([]int{
		100, 200, 300, 350, 400, 450, 500, 550, 600, 650,
		700, 750, 800, 850, 900, 950, 1000, 1500, 2000, 2500,
	}, 2, 2)
}
