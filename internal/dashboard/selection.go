package dashboard

import (
	"net/url"
)

// Query parameters of the subject filter.
const (
	paramSubject = "subject"
	paramApplied = "applied"
)

// Selection is the set of subjects a request asks for.
type Selection struct {
	Subjects []string
	// Explicit is set once the user submitted the filter form, so an empty
	// selection can be told apart from the initial "everything" default.
	Explicit bool
}

// ParseSelection reads the subject filter from query values. Without any
// filter parameters every available subject is selected. Unknown codes are
// dropped and the result follows the order of available.
func ParseSelection(q url.Values, available []string) Selection {
	requested := q[paramSubject]
	explicit := q.Get(paramApplied) != "" || len(requested) > 0

	if !explicit {
		return Selection{Subjects: append([]string(nil), available...)}
	}

	wanted := make(map[string]bool, len(requested))
	for _, s := range requested {
		wanted[s] = true
	}

	selected := make([]string, 0, len(requested))

	for _, s := range available {
		if wanted[s] {
			selected = append(selected, s)
		}
	}

	return Selection{Subjects: selected, Explicit: true}
}

// Contains reports whether a subject code is selected.
func (s Selection) Contains(code string) bool {
	for _, c := range s.Subjects {
		if c == code {
			return true
		}
	}

	return false
}

// Query encodes the selection so that links reproduce it.
func (s Selection) Query() url.Values {
	q := url.Values{}
	q.Set(paramApplied, "1")

	for _, c := range s.Subjects {
		q.Add(paramSubject, c)
	}

	return q
}
