// Package domain holds the immutable value types of a timetabling
// configuration: Teacher, Lesson, Class, and the Configuration that owns
// them. Teachers and Lessons are allocated once per Configuration and
// shared by pointer across every Schedule clone produced during search —
// teachers are compared by name, never by deep structural equality, so the
// hot path of the search loop never pays for a field-by-field diff.
package domain

import (
	"fmt"

	"github.com/campusplan/timetable/internal/availability"
)

// Teacher is an immutable name plus an owned Availability bitset. Identity
// is by name within a Configuration; names must be unique.
type Teacher struct {
	Name         string
	Availability *availability.Availability
}

// Lesson is an immutable triple (subject, teacher, periods per week). It
// belongs to exactly one Class, enforced by the Class that constructs it.
type Lesson struct {
	Subject        string
	Teacher        *Teacher
	PeriodsPerWeek int
}

func newLesson(subject string, teacher *Teacher, periodsPerWeek int) (*Lesson, error) {
	if subject == "" {
		return nil, fmt.Errorf("domain: lesson subject must not be empty")
	}
	if teacher == nil {
		return nil, fmt.Errorf("domain: lesson %q has no teacher", subject)
	}
	if periodsPerWeek < 1 {
		return nil, fmt.Errorf("domain: lesson %q periods_per_week must be >= 1, got %d", subject, periodsPerWeek)
	}
	return &Lesson{Subject: subject, Teacher: teacher, PeriodsPerWeek: periodsPerWeek}, nil
}

// Class is a name plus an ordered list of Lessons.
type Class struct {
	Name    string
	Lessons []*Lesson
}

// TotalPeriods is the sum of periods_per_week across all of the class's
// lessons.
func (c *Class) TotalPeriods() int {
	total := 0
	for _, l := range c.Lessons {
		total += l.PeriodsPerWeek
	}
	return total
}
