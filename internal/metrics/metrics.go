// Package metrics implements the fitness/penalty evaluator from spec.md
// section 4.3: teacher conflicts, unscheduled periods, empty-space safety
// check, same-subject adjacency, and free-first-period count.
package metrics

import (
	"github.com/campusplan/timetable/internal/domain"
	"github.com/campusplan/timetable/internal/schedule"
)

// Report is the full set of measurements taken over one Schedule.
type Report struct {
	TeacherConflicts  int     // C_int: availability violations + double-bookings, floored
	Unscheduled       int     // U: total_periods - occupied, summed over classes
	EmptySpace        int     // E: gap cells inside a row's [first,last] span, weighted
	Adjacency         float64 // A: 0.5 per same-subject adjacent pair, reported only
	FreeFirstPeriods  int     // F: (class, day) rows whose period 0 is empty
	Fitness           float64 // 50*C_int + 2*U + E + 5*F
}

const (
	emptySpaceWeight = 1000
	adjacencyWeight  = 0.5

	weightConflicts = 50
	weightUnsched   = 2
	weightFreeFirst = 5
)

// Evaluate computes a Report for s.
func Evaluate(s *schedule.Schedule) Report {
	conflicts := teacherConflicts(s)
	unscheduled := unscheduledPeriods(s)
	emptySpace := emptySpacePenalty(s)
	adjacency := adjacencyPenalty(s)
	freeFirst := freeFirstPeriods(s)

	fitness := float64(weightConflicts*conflicts) +
		float64(weightUnsched*unscheduled) +
		float64(emptySpace) +
		float64(weightFreeFirst*freeFirst)

	return Report{
		TeacherConflicts: conflicts,
		Unscheduled:      unscheduled,
		EmptySpace:       emptySpace,
		Adjacency:        adjacency,
		FreeFirstPeriods: freeFirst,
		Fitness:          fitness,
	}
}

type slotKey struct {
	day    int
	period int
}

// teacherConflicts counts availability violations plus double-bookings, as
// defined in spec.md section 4.3.
func teacherConflicts(s *schedule.Schedule) int {
	conflicts := 0

	teacherAt := make(map[slotKey]map[string]int)

	for _, name := range s.Order {
		g := s.Classes[name]
		for d := 0; d < g.Days; d++ {
			for p := 0; p < g.Periods; p++ {
				lesson := g.Cells[d][p]
				if lesson == nil {
					continue
				}

				if !lesson.Teacher.Availability.Get(d, p) {
					conflicts++
				}

				k := slotKey{day: d, period: p}
				if teacherAt[k] == nil {
					teacherAt[k] = make(map[string]int)
				}
				teacherAt[k][lesson.Teacher.Name]++
			}
		}
	}

	for _, byTeacher := range teacherAt {
		for _, count := range byTeacher {
			if count > 1 {
				conflicts += count - 1
			}
		}
	}

	return conflicts
}

// unscheduledPeriods sums, over every class, total_periods minus occupied
// cell count.
func unscheduledPeriods(s *schedule.Schedule) int {
	total := 0
	for _, name := range s.Order {
		class := classByName(s, name)
		g := s.Classes[name]
		total += class.TotalPeriods() - g.OccupiedCount()
	}
	return total
}

// emptySpacePenalty counts, per (class, day), empty cells strictly between
// the first and last occupied cell, weighted heavily. It is a safety check
// against buggy mutations: a compact schedule always scores zero here.
func emptySpacePenalty(s *schedule.Schedule) int {
	gaps := 0
	for _, name := range s.Order {
		g := s.Classes[name]
		for d := 0; d < g.Days; d++ {
			first, last := schedule.RowBounds(g, d)
			if first == -1 {
				continue
			}
			for p := first + 1; p < last; p++ {
				if g.Cells[d][p] == nil {
					gaps++
				}
			}
		}
	}
	return gaps * emptySpaceWeight
}

// adjacencyPenalty adds 0.5 for every pair of adjacent periods within a day
// holding lessons of the same subject.
func adjacencyPenalty(s *schedule.Schedule) float64 {
	penalty := 0.0
	for _, name := range s.Order {
		g := s.Classes[name]
		for d := 0; d < g.Days; d++ {
			for p := 0; p+1 < g.Periods; p++ {
				a, b := g.Cells[d][p], g.Cells[d][p+1]
				if a != nil && b != nil && a.Subject == b.Subject {
					penalty += adjacencyWeight
				}
			}
		}
	}
	return penalty
}

// freeFirstPeriods counts, over every (class, day), a +1 when the first
// period of the day is empty.
func freeFirstPeriods(s *schedule.Schedule) int {
	count := 0
	for _, name := range s.Order {
		g := s.Classes[name]
		for d := 0; d < g.Days; d++ {
			if g.Cells[d][0] == nil {
				count++
			}
		}
	}
	return count
}

func classByName(s *schedule.Schedule, name string) *domain.Class {
	for _, c := range s.Config.Classes {
		if c.Name == name {
			return c
		}
	}
	return nil
}
