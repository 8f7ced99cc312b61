// Package mutate implements the two neighbourhood operators from spec.md
// section 4.5: M1 conflict-targeted repair (preferred whenever a conflict
// exists) and M2 random swap. Both return a freshly cloned Schedule; the
// caller (the annealer) owns accept/reject.
package mutate

import (
	"math/rand"

	"github.com/campusplan/timetable/internal/construct"
	"github.com/campusplan/timetable/internal/domain"
	"github.com/campusplan/timetable/internal/schedule"
)

// cell identifies one occupied grid position.
type cell struct {
	class  string
	day    int
	period int
}

// ConflictCells scans s for cells participating in at least one conflict:
// availability violations are collected first, then double-bookings,
// matching the scan order in spec.md section 4.5.
func ConflictCells(s *schedule.Schedule) []cell {
	var cells []cell
	seen := make(map[cell]bool)

	add := func(c cell) {
		if !seen[c] {
			seen[c] = true
			cells = append(cells, c)
		}
	}

	for _, name := range s.Order {
		g := s.Classes[name]
		for d := 0; d < g.Days; d++ {
			for p := 0; p < g.Periods; p++ {
				lesson := g.Cells[d][p]
				if lesson == nil {
					continue
				}
				if !lesson.Teacher.Availability.Get(d, p) {
					add(cell{class: name, day: d, period: p})
				}
			}
		}
	}

	type slotTeacher struct {
		day, period int
		teacher     string
	}
	occupants := make(map[slotTeacher][]cell)
	for _, name := range s.Order {
		g := s.Classes[name]
		for d := 0; d < g.Days; d++ {
			for p := 0; p < g.Periods; p++ {
				lesson := g.Cells[d][p]
				if lesson == nil {
					continue
				}
				k := slotTeacher{day: d, period: p, teacher: lesson.Teacher.Name}
				occupants[k] = append(occupants[k], cell{class: name, day: d, period: p})
			}
		}
	}
	for _, name := range s.Order {
		g := s.Classes[name]
		for d := 0; d < g.Days; d++ {
			for p := 0; p < g.Periods; p++ {
				lesson := g.Cells[d][p]
				if lesson == nil {
					continue
				}
				k := slotTeacher{day: d, period: p, teacher: lesson.Teacher.Name}
				if len(occupants[k]) > 1 {
					for _, c := range occupants[k] {
						add(c)
					}
				}
			}
		}
	}

	return cells
}

func isAvailableAndFree(s *schedule.Schedule, teacher *domain.Teacher, class string, day, period int) bool {
	if s.Classes[class].Cells[day][period] != nil {
		return false
	}
	if !teacher.Availability.Get(day, period) {
		return false
	}
	for _, name := range s.Order {
		if name == class {
			continue
		}
		lesson := s.Classes[name].Cells[day][period]
		if lesson != nil && lesson.Teacher.Name == teacher.Name {
			return false
		}
	}
	return true
}

// RepairConflict performs M1: pick a uniformly random conflicting cell and
// try to relocate its lesson to the first empty, available,
// non-double-booked cell of the same class in row-major order. If
// relocation fails, it rebuilds the whole class via the constructive
// initialiser. Returns nil if s has no conflicts at all (the caller should
// fall back to M2).
func RepairConflict(s *schedule.Schedule, classes map[string]*domain.Class, rng *rand.Rand) *schedule.Schedule {
	conflicted := ConflictCells(s)
	if len(conflicted) == 0 {
		return nil
	}

	candidate := s.Clone()
	target := conflicted[rng.Intn(len(conflicted))]

	grid := candidate.Classes[target.class]
	lesson := grid.Cells[target.day][target.period]
	if lesson == nil {
		return candidate
	}

	for d := 0; d < grid.Days; d++ {
		for p := 0; p < grid.Periods; p++ {
			if d == target.day && p == target.period {
				continue
			}
			if isAvailableAndFree(candidate, lesson.Teacher, target.class, d, p) {
				grid.Cells[target.day][target.period] = nil
				grid.Cells[d][p] = lesson
				candidate.Compact()
				return candidate
			}
		}
	}

	construct.RebuildClass(candidate, classes[target.class], rng)
	return candidate
}

// RandomSwap performs M2: with probability 0.5 swap two occupied periods
// within one class/day; otherwise swap one occupied period from each of
// two distinct days of the same class, accepting the swap only if both
// relocated lessons remain valid (teacher available, not double-booked) at
// their new cell.
func RandomSwap(s *schedule.Schedule, rng *rand.Rand) *schedule.Schedule {
	candidate := s.Clone()
	if len(candidate.Order) == 0 {
		return candidate
	}
	className := candidate.Order[rng.Intn(len(candidate.Order))]
	grid := candidate.Classes[className]
	if grid.Days == 0 || grid.Periods == 0 {
		return candidate
	}

	if rng.Float64() < 0.5 {
		day := rng.Intn(grid.Days)
		occupied := occupiedPeriods(grid, day)
		if len(occupied) < 2 {
			return candidate
		}
		i, j := pickTwoDistinct(rng, len(occupied))
		p1, p2 := occupied[i], occupied[j]
		grid.Cells[day][p1], grid.Cells[day][p2] = grid.Cells[day][p2], grid.Cells[day][p1]
		candidate.Compact()
		return candidate
	}

	if grid.Days < 2 {
		return candidate
	}
	d1, d2 := pickTwoDistinct(rng, grid.Days)
	occ1 := occupiedPeriods(grid, d1)
	occ2 := occupiedPeriods(grid, d2)
	if len(occ1) == 0 || len(occ2) == 0 {
		return candidate
	}
	p1 := occ1[rng.Intn(len(occ1))]
	p2 := occ2[rng.Intn(len(occ2))]

	lesson1 := grid.Cells[d1][p1]
	lesson2 := grid.Cells[d2][p2]

	grid.Cells[d1][p1] = nil
	grid.Cells[d2][p2] = nil
	ok1 := isAvailableAndFree(candidate, lesson1.Teacher, className, d2, p2)
	ok2 := isAvailableAndFree(candidate, lesson2.Teacher, className, d1, p1)
	if !ok1 || !ok2 {
		grid.Cells[d1][p1] = lesson1
		grid.Cells[d2][p2] = lesson2
		return candidate
	}

	grid.Cells[d2][p2] = lesson1
	grid.Cells[d1][p1] = lesson2
	candidate.Compact()
	return candidate
}

func occupiedPeriods(g *schedule.Grid, day int) []int {
	var periods []int
	for p := 0; p < g.Periods; p++ {
		if g.Cells[day][p] != nil {
			periods = append(periods, p)
		}
	}
	return periods
}

func pickTwoDistinct(rng *rand.Rand, n int) (int, int) {
	i := rng.Intn(n)
	j := rng.Intn(n)
	for j == i && n > 1 {
		j = rng.Intn(n)
	}
	return i, j
}
