// Package filter binds the record filter to command-line flags.
package filter

import (
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/docsync/pkg/articles"
	"github.com/agentstation/docsync/pkg/errors"
	"github.com/agentstation/docsync/pkg/projection"
)

// Flags holds the filter flags of a command.
type Flags struct {
	Term     string
	Category string
	LinkedIn string
	Start    string
	End      string
}

// AddFlags registers the filter flags on cmd.
func AddFlags(cmd *cobra.Command) *Flags {
	f := &Flags{}
	cmd.Flags().StringVarP(&f.Term, "search", "s", "",
		"Search title, links, slugs, summary, author and hashtags")
	cmd.Flags().StringVarP(&f.Category, "category", "c", "",
		"Filter by main category (All for every category)")
	cmd.Flags().StringVar(&f.LinkedIn, "linkedin", "",
		"Filter by LinkedIn flag: yes, no or all")
	cmd.Flags().StringVar(&f.Start, "start", "",
		"Earliest date, inclusive (e.g. 2024-01-31 or \"last monday\")")
	cmd.Flags().StringVar(&f.End, "end", "",
		"Latest date, inclusive")
	return f
}

// Filter validates the flags and converts them to a projection filter.
// A nil receiver yields the empty filter.
func (f *Flags) Filter() (projection.Filter, error) {
	if f == nil {
		return projection.Filter{}, nil
	}

	for name, v := range map[string]string{"start": f.Start, "end": f.End} {
		if strings.TrimSpace(v) != "" && articles.NormalizeDate(v) == "" {
			return projection.Filter{}, errors.NewValidationError(name, v, "is not a date")
		}
	}
	switch strings.ToLower(strings.TrimSpace(f.LinkedIn)) {
	case "", "all", "yes", "no", "true", "false":
	default:
		return projection.Filter{}, errors.NewValidationError("linkedin", f.LinkedIn, "must be yes, no or all")
	}

	return projection.ParseFilter(f.values()), nil
}

// values renders the flags in the query form the HTTP API accepts.
func (f *Flags) values() url.Values {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("q", f.Term)
	set("category", f.Category)
	set("linkedin", f.LinkedIn)
	set("start", f.Start)
	set("end", f.End)
	return q
}
