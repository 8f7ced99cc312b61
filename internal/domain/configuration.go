package domain

import (
	"fmt"

	"github.com/campusplan/timetable/internal/availability"
	"github.com/campusplan/timetable/pkg/xerrors"
)

// TeacherSpec and ClassSpec are the caller-facing request shapes described
// in spec.md section 6: a teacher name plus availability wire, and a class
// name plus an ordered list of lessons referencing teachers by name.
type TeacherSpec struct {
	Name         string
	Availability availability.Wire
}

type LessonSpec struct {
	Subject        string
	TeacherName    string
	PeriodsPerWeek int
}

type ClassSpec struct {
	Name    string
	Lessons []LessonSpec
}

// Configuration is the immutable tuple (D, P, teachers, classes) handed to
// the engine. It owns every Teacher and Lesson value for the lifetime of
// one generation call; Schedule clones reference them by pointer.
type Configuration struct {
	Days    int
	Periods int
	Teachers []*Teacher
	Classes  []*Class

	teachersByName map[string]*Teacher
}

// TeacherByName looks up a Teacher by name, or nil if absent.
func (c *Configuration) TeacherByName(name string) *Teacher {
	return c.teachersByName[name]
}

// Build validates and constructs a Configuration from caller-supplied
// specs, per the validation rules in spec.md section 6. Validation runs in
// the order: dimensions, teacher availability wires, empty class list, then
// for each class in turn: no lessons, unknown teacher, infeasible-by-
// construction, capacity — the first violation found is returned.
func Build(days, periods int, teachers []TeacherSpec, classes []ClassSpec) (*Configuration, error) {
	if days < 1 || days > 7 || periods < 1 || periods > 32 {
		return nil, xerrors.InvalidConfig(xerrors.KindOutOfRangeDimension,
			"days must be in [1,7] and periods_per_day in [1,32], got days=%d periods=%d", days, periods)
	}

	cfg := &Configuration{
		Days:           days,
		Periods:        periods,
		teachersByName: make(map[string]*Teacher, len(teachers)),
	}

	for _, ts := range teachers {
		avail, err := availability.FromWords(ts.Availability)
		if err != nil {
			return nil, xerrors.Wrap(xerrors.KindOutOfRangeDimension, fmt.Sprintf("teacher %q availability", ts.Name), err)
		}
		t := &Teacher{Name: ts.Name, Availability: avail}
		cfg.Teachers = append(cfg.Teachers, t)
		cfg.teachersByName[ts.Name] = t
	}

	if len(classes) == 0 {
		return nil, xerrors.InvalidConfig(xerrors.KindEmptyInput, "configuration has no classes")
	}

	for _, cs := range classes {
		if len(cs.Lessons) == 0 {
			return nil, xerrors.InvalidConfig(xerrors.KindEmptyInput, "class %q has no lessons", cs.Name)
		}

		class := &Class{Name: cs.Name}
		for _, ls := range cs.Lessons {
			teacher, ok := cfg.teachersByName[ls.TeacherName]
			if !ok {
				return nil, xerrors.InvalidConfig(xerrors.KindUnknownTeacher,
					"class %q lesson %q references unknown teacher %q", cs.Name, ls.Subject, ls.TeacherName)
			}

			if ls.PeriodsPerWeek > 0 && teacher.Availability.CountAvailable() == 0 {
				return nil, xerrors.InvalidConfig(xerrors.KindInfeasibleByConstruction,
					"teacher %q has zero available slots but is required by class %q lesson %q",
					teacher.Name, cs.Name, ls.Subject)
			}

			lesson, err := newLesson(ls.Subject, teacher, ls.PeriodsPerWeek)
			if err != nil {
				return nil, xerrors.Wrap(xerrors.KindEmptyInput, fmt.Sprintf("class %q", cs.Name), err)
			}
			class.Lessons = append(class.Lessons, lesson)
		}

		if total := class.TotalPeriods(); total > days*periods {
			return nil, xerrors.InvalidConfig(xerrors.KindCapacityExceeded,
				"class %q requires %d periods but the week only has %d", cs.Name, total, days*periods)
		}

		cfg.Classes = append(cfg.Classes, class)
	}

	return cfg, nil
}
