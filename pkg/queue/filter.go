package queue

import (
	"strings"

	"github.com/optics-dev/optics-runner/pkg/project"
)

// Filter selects and orders the test cases that enter the queue.
//
// When Include is non-empty only the named cases are retained; Exclude is
// then ignored entirely. Otherwise Exclude removes the named cases. Matching
// is case-insensitive on trimmed names; retained cases keep their declared
// table order, not the filter list order. Names that match nothing are
// silently absent, never errors.
//
// Setup and teardown cases (names containing "setup" or "teardown") bypass
// the filter: they are always retained.
type Filter struct {
	Include []string
	Exclude []string

	// WrapCaseSetup inserts the per-case setup before and teardown after each
	// regular test case. Suite setup/teardown placement is unconditional.
	WrapCaseSetup bool
}

func normalizeSet(names []string) map[string]bool {
	if len(names) == 0 {
		return nil
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[strings.ToLower(strings.TrimSpace(n))] = true
	}
	return set
}

func isSetupOrTeardown(name string) bool {
	lname := strings.ToLower(name)
	return strings.Contains(lname, "setup") || strings.Contains(lname, "teardown")
}

// apply filters the declared cases, preserving declaration order.
func (f Filter) apply(cases []project.TestCase) []project.TestCase {
	include := normalizeSet(f.Include)
	exclude := normalizeSet(f.Exclude)

	var retained []project.TestCase
	for _, tc := range cases {
		if isSetupOrTeardown(tc.ID) {
			retained = append(retained, tc)
			continue
		}
		lname := strings.ToLower(strings.TrimSpace(tc.ID))
		switch {
		case include != nil:
			if include[lname] {
				retained = append(retained, tc)
			}
		case exclude != nil:
			if !exclude[lname] {
				retained = append(retained, tc)
			}
		default:
			retained = append(retained, tc)
		}
	}
	return retained
}

// order arranges filtered cases for execution: suite setup first, suite
// teardown last, and optionally each regular case wrapped with the per-case
// setup/teardown pair.
func (f Filter) order(cases []project.TestCase) []project.TestCase {
	var suiteSetup, suiteTeardown, caseSetup, caseTeardown *project.TestCase
	var regular []project.TestCase

	for i := range cases {
		tc := cases[i]
		lname := strings.ToLower(tc.ID)
		isSuite := strings.Contains(lname, "suite")
		switch {
		case isSuite && strings.Contains(lname, "setup"):
			suiteSetup = &cases[i]
		case isSuite && strings.Contains(lname, "teardown"):
			suiteTeardown = &cases[i]
		case strings.Contains(lname, "setup") && caseSetup == nil:
			caseSetup = &cases[i]
		case strings.Contains(lname, "teardown") && caseTeardown == nil:
			caseTeardown = &cases[i]
		default:
			regular = append(regular, tc)
		}
	}

	var ordered []project.TestCase
	if suiteSetup != nil {
		ordered = append(ordered, *suiteSetup)
	}
	for _, tc := range regular {
		if f.WrapCaseSetup && caseSetup != nil {
			ordered = append(ordered, *caseSetup)
		}
		ordered = append(ordered, tc)
		if f.WrapCaseSetup && caseTeardown != nil {
			ordered = append(ordered, *caseTeardown)
		}
	}
	if suiteTeardown != nil {
		ordered = append(ordered, *suiteTeardown)
	}
	return ordered
}
