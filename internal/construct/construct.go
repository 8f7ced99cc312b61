// Package construct implements the constructive initialiser from spec.md
// section 4.4: a most-constrained-teacher-first greedy placement that
// produces a gap-free starting Schedule, deferring lessons it cannot place
// without conflict and falling back to any empty cell for those deferred
// lessons once the rest of the class is filled in.
package construct

import (
	"math/rand"
	"sort"

	"github.com/campusplan/timetable/internal/domain"
	"github.com/campusplan/timetable/internal/schedule"
)

type request struct {
	class  *domain.Class
	lesson *domain.Lesson
}

// busyTeachers tracks, across all classes placed so far, which teacher is
// occupied at which (day, period) — placement must never double-book a
// teacher while building the initial schedule, even though the search
// later tolerates (and repairs) conflicts left by a forced fallback.
type busyTeachers map[string]map[int]bool // teacher name -> (day*periods+period) -> busy

func (b busyTeachers) isBusy(teacher string, slotIdx int) bool {
	return b[teacher] != nil && b[teacher][slotIdx]
}

func (b busyTeachers) markBusy(teacher string, slotIdx int) {
	if b[teacher] == nil {
		b[teacher] = make(map[int]bool)
	}
	b[teacher][slotIdx] = true
}

// Initialize builds a gap-free starting Schedule for cfg using rng for all
// randomness (shuffling candidate slots), so that (cfg, seed) fully
// determines the output once rng is seeded deterministically by the
// caller.
func Initialize(cfg *domain.Configuration, rng *rand.Rand) *schedule.Schedule {
	sched := schedule.New(cfg)
	busy := make(busyTeachers)

	for _, class := range cfg.Classes {
		placeClass(sched, class, busy, rng)
	}

	sched.Compact()
	return sched
}

// RebuildClass clears every cell of class within sched and re-runs the
// constructive placement for that class only, respecting the teacher
// occupancy already committed by every other class currently in sched.
// Used by the M1 conflict-repair mutation (spec.md section 4.5) as a
// last resort when a single-lesson relocation cannot clear a conflict.
func RebuildClass(sched *schedule.Schedule, class *domain.Class, rng *rand.Rand) {
	busy := busyFromSchedule(sched, class.Name)

	grid := sched.Classes[class.Name]
	for d := 0; d < grid.Days; d++ {
		for p := 0; p < grid.Periods; p++ {
			grid.Cells[d][p] = nil
		}
	}

	placeClass(sched, class, busy, rng)
	sched.Compact()
}

// busyFromSchedule rebuilds the teacher-occupancy index from every class in
// sched except excludeClass, so a rebuild never collides with lessons that
// are staying put.
func busyFromSchedule(sched *schedule.Schedule, excludeClass string) busyTeachers {
	busy := make(busyTeachers)
	for _, name := range sched.Order {
		if name == excludeClass {
			continue
		}
		grid := sched.Classes[name]
		for d := 0; d < grid.Days; d++ {
			for p := 0; p < grid.Periods; p++ {
				lesson := grid.Cells[d][p]
				if lesson == nil {
					continue
				}
				busy.markBusy(lesson.Teacher.Name, d*grid.Periods+p)
			}
		}
	}
	return busy
}

func placeClass(sched *schedule.Schedule, class *domain.Class, busy busyTeachers, rng *rand.Rand) {
	grid := sched.Classes[class.Name]

	requests := expandRequests(class)
	sortMostConstrainedFirst(requests)

	var deferred []request

	for _, req := range requests {
		if !tryPlace(grid, req, busy, rng) {
			deferred = append(deferred, req)
		}
	}

	// Step 4: place any remaining deferred lessons in any still-empty cell,
	// accepting whatever availability/double-booking conflict results —
	// the search's repair operators clean this up afterwards.
	for _, req := range deferred {
		placeAnywhereEmpty(grid, req, busy)
	}
}

func expandRequests(class *domain.Class) []request {
	var requests []request
	for _, lesson := range class.Lessons {
		for i := 0; i < lesson.PeriodsPerWeek; i++ {
			requests = append(requests, request{class: class, lesson: lesson})
		}
	}
	return requests
}

// sortMostConstrainedFirst orders requests ascending by the teacher's
// available-slot count, breaking ties by subject name for determinism.
func sortMostConstrainedFirst(requests []request) {
	sort.SliceStable(requests, func(i, j int) bool {
		ci := requests[i].lesson.Teacher.Availability.CountAvailable()
		cj := requests[j].lesson.Teacher.Availability.CountAvailable()
		if ci != cj {
			return ci < cj
		}
		return requests[i].lesson.Subject < requests[j].lesson.Subject
	})
}

func tryPlace(grid *schedule.Grid, req request, busy busyTeachers, rng *rand.Rand) bool {
	teacher := req.lesson.Teacher
	slots := teacher.Availability.AvailableSlots()
	rng.Shuffle(len(slots), func(i, j int) { slots[i], slots[j] = slots[j], slots[i] })

	for _, slot := range slots {
		if grid.Cells[slot.Day][slot.Period] != nil {
			continue
		}
		idx := slot.Day*grid.Periods + slot.Period
		if busy.isBusy(teacher.Name, idx) {
			continue
		}

		grid.Cells[slot.Day][slot.Period] = req.lesson
		busy.markBusy(teacher.Name, idx)
		return true
	}
	return false
}

func placeAnywhereEmpty(grid *schedule.Grid, req request, busy busyTeachers) {
	for d := 0; d < grid.Days; d++ {
		for p := 0; p < grid.Periods; p++ {
			if grid.Cells[d][p] == nil {
				grid.Cells[d][p] = req.lesson
				busy.markBusy(req.lesson.Teacher.Name, d*grid.Periods+p)
				return
			}
		}
	}
	// Every cell in this class is already occupied: the lesson stays
	// unscheduled, reported by the evaluator as part of U.
}
