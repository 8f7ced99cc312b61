// Package availability provides a dense, bit-packed representation of a
// teacher's weekly availability: D days, each with P periods (1 <= D <= 7,
// 1 <= P <= 32). A single slot is addressed by (day, period) and stored as
// one bit in a flattened kelindar/bitmap.Bitmap, so membership tests and
// mutation stay O(1) regardless of how many slots are actually available.
package availability

import (
	"fmt"

	"github.com/kelindar/bitmap"
)

// Availability is a fixed-shape D x P bitset. The zero value is not usable;
// construct one with New.
type Availability struct {
	days    int
	periods int
	bits    bitmap.Bitmap
}

// New allocates an Availability with all slots initially unavailable.
func New(days, periods int) (*Availability, error) {
	if days < 1 || days > 7 {
		return nil, fmt.Errorf("availability: days out of range [1,7]: %d", days)
	}
	if periods < 1 || periods > 32 {
		return nil, fmt.Errorf("availability: periods out of range [1,32]: %d", periods)
	}
	return &Availability{days: days, periods: periods}, nil
}

// Days returns the configured number of days.
func (a *Availability) Days() int { return a.days }

// Periods returns the configured number of periods per day.
func (a *Availability) Periods() int { return a.periods }

func (a *Availability) index(day, period int) uint32 {
	a.mustInRange(day, period)
	return uint32(day*a.periods + period)
}

func (a *Availability) mustInRange(day, period int) {
	if day < 0 || day >= a.days {
		panic(fmt.Sprintf("availability: day %d out of range [0,%d)", day, a.days))
	}
	if period < 0 || period >= a.periods {
		panic(fmt.Sprintf("availability: period %d out of range [0,%d)", period, a.periods))
	}
}

// Get reports whether the slot (day, period) is available.
func (a *Availability) Get(day, period int) bool {
	return a.bits.Contains(a.index(day, period))
}

// Set marks (day, period) available or unavailable.
func (a *Availability) Set(day, period int, v bool) {
	idx := a.index(day, period)
	if v {
		a.bits.Set(idx)
	} else {
		a.bits.Remove(idx)
	}
}

// Toggle flips the availability of (day, period) and returns the new value.
func (a *Availability) Toggle(day, period int) bool {
	v := !a.Get(day, period)
	a.Set(day, period, v)
	return v
}

// SetDay marks every period of a day available (v=true) or unavailable
// (v=false) in one call.
func (a *Availability) SetDay(day int, v bool) {
	for p := 0; p < a.periods; p++ {
		a.Set(day, p, v)
	}
}

// Slot is a (day, period) coordinate.
type Slot struct {
	Day    int
	Period int
}

// AvailableSlots returns every available slot in lexicographic (day, period)
// order.
func (a *Availability) AvailableSlots() []Slot {
	slots := make([]Slot, 0, a.days*a.periods)
	for d := 0; d < a.days; d++ {
		for p := 0; p < a.periods; p++ {
			if a.Get(d, p) {
				slots = append(slots, Slot{Day: d, Period: p})
			}
		}
	}
	return slots
}

// CountAvailable returns the number of available slots. Used by the
// constructive initialiser to rank teachers as most-constrained-first.
func (a *Availability) CountAvailable() int {
	count := 0
	for d := 0; d < a.days; d++ {
		for p := 0; p < a.periods; p++ {
			if a.Get(d, p) {
				count++
			}
		}
	}
	return count
}

// Clone returns an independent copy of a.
func (a *Availability) Clone() *Availability {
	out := &Availability{days: a.days, periods: a.periods}
	for d := 0; d < a.days; d++ {
		for p := 0; p < a.periods; p++ {
			if a.Get(d, p) {
				out.Set(d, p, true)
			}
		}
	}
	return out
}

// Wire is the persistence contract from spec.md section 4.1:
// {D, P, words: [u32; D]}, one word per day, low P bits significant,
// marshalled under the JSON names days, periods_per_day and buffer.
type Wire struct {
	Days    int      `json:"days"`
	Periods int      `json:"periods_per_day"`
	Words   []uint32 `json:"buffer"`
}

// Words serialises a into its wire representation, one uint32 per day.
func (a *Availability) Words() Wire {
	words := make([]uint32, a.days)
	for d := 0; d < a.days; d++ {
		var w uint32
		for p := 0; p < a.periods; p++ {
			if a.Get(d, p) {
				w |= 1 << uint(p)
			}
		}
		words[d] = w
	}
	return Wire{Days: a.days, Periods: a.periods, Words: words}
}

// FromWords reconstructs an Availability from its wire representation. It
// rejects inputs where any word has bits set at or above position Periods,
// per spec.md section 4.1.
func FromWords(w Wire) (*Availability, error) {
	a, err := New(w.Days, w.Periods)
	if err != nil {
		return nil, err
	}
	if len(w.Words) != w.Days {
		return nil, fmt.Errorf("availability: expected %d words, got %d", w.Days, len(w.Words))
	}
	mask := uint32(1)<<uint(w.Periods) - 1
	for d, word := range w.Words {
		if word&^mask != 0 {
			return nil, fmt.Errorf("availability: word for day %d has bits set at or above period %d", d, w.Periods)
		}
		for p := 0; p < w.Periods; p++ {
			if word&(1<<uint(p)) != 0 {
				a.Set(d, p, true)
			}
		}
	}
	return a, nil
}
