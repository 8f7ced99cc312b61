// Package schedule implements the per-class D x P grid the search
// operates on: cell occupancy, the gap-free/compaction invariant from
// spec.md section 4.2, and cheap cloning for the mutation loop.
package schedule

import "github.com/campusplan/timetable/internal/domain"

// Grid is one class's D x P array of lesson slots. A nil cell is empty.
type Grid struct {
	Days    int
	Periods int
	Cells   [][]*domain.Lesson // Cells[day][period]
}

func newGrid(days, periods int) *Grid {
	cells := make([][]*domain.Lesson, days)
	for d := range cells {
		cells[d] = make([]*domain.Lesson, periods)
	}
	return &Grid{Days: days, Periods: periods, Cells: cells}
}

// OccupiedCount returns the number of non-empty cells in the grid.
func (g *Grid) OccupiedCount() int {
	n := 0
	for d := 0; d < g.Days; d++ {
		for p := 0; p < g.Periods; p++ {
			if g.Cells[d][p] != nil {
				n++
			}
		}
	}
	return n
}

// clone returns a grid with independently-addressable rows (the lesson
// pointers themselves are shared, per domain's pointer-identity design).
func (g *Grid) clone() *Grid {
	cells := make([][]*domain.Lesson, g.Days)
	for d := range cells {
		row := make([]*domain.Lesson, g.Periods)
		copy(row, g.Cells[d])
		cells[d] = row
	}
	return &Grid{Days: g.Days, Periods: g.Periods, Cells: cells}
}

// Schedule maps class name to its Grid.
type Schedule struct {
	Config  *domain.Configuration
	Classes map[string]*Grid
	// Order preserves the configuration's class order for deterministic
	// iteration (search/evaluation must never range over a Go map when the
	// result feeds into an RNG draw or an accumulated score that the
	// determinism property depends on).
	Order []string
}

// New allocates an empty Schedule — one Grid per class in cfg, all cells
// unoccupied.
func New(cfg *domain.Configuration) *Schedule {
	s := &Schedule{
		Config:  cfg,
		Classes: make(map[string]*Grid, len(cfg.Classes)),
		Order:   make([]string, 0, len(cfg.Classes)),
	}
	for _, c := range cfg.Classes {
		s.Classes[c.Name] = newGrid(cfg.Days, cfg.Periods)
		s.Order = append(s.Order, c.Name)
	}
	return s
}

// Clone returns an independent copy of s whose grids can be mutated
// without affecting the original.
func (s *Schedule) Clone() *Schedule {
	out := &Schedule{
		Config:  s.Config,
		Classes: make(map[string]*Grid, len(s.Classes)),
		Order:   append([]string(nil), s.Order...),
	}
	for name, g := range s.Classes {
		out.Classes[name] = g.clone()
	}
	return out
}

// Compact rewrites every (class, day) row by concatenating its occupied
// cells into the prefix [0, k) and clearing the suffix. It preserves the
// multiset of lessons per row; it reorders within a day but never across
// days. Every mutation that may introduce a gap must be followed by
// Compact before the schedule is evaluated or accepted.
func (s *Schedule) Compact() {
	for _, name := range s.Order {
		g := s.Classes[name]
		for d := 0; d < g.Days; d++ {
			row := g.Cells[d]
			write := 0
			for read := 0; read < g.Periods; read++ {
				if row[read] != nil {
					row[write] = row[read]
					write++
				}
			}
			for ; write < g.Periods; write++ {
				row[write] = nil
			}
		}
	}
}

// ValidateNoGaps returns true iff, for every (class, day), the occupied
// cells form a prefix — i.e. no empty cell precedes an occupied one.
func (s *Schedule) ValidateNoGaps() bool {
	for _, name := range s.Order {
		g := s.Classes[name]
		for d := 0; d < g.Days; d++ {
			seenEmpty := false
			for p := 0; p < g.Periods; p++ {
				if g.Cells[d][p] == nil {
					seenEmpty = true
				} else if seenEmpty {
					return false
				}
			}
		}
	}
	return true
}

// RowBounds returns the index of the first and last occupied cell in
// (class, day), both -1 if the row is empty.
func RowBounds(g *Grid, day int) (first, last int) {
	first, last = -1, -1
	for p := 0; p < g.Periods; p++ {
		if g.Cells[day][p] != nil {
			if first == -1 {
				first = p
			}
			last = p
		}
	}
	return
}
