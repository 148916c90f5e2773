// Package cmdutil provides shared flags for the docsync article commands.
package cmdutil

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/docsync/pkg/articles"
	"github.com/agentstation/docsync/pkg/errors"
)

// ArticleFlags holds one flag per logical article field plus free-form
// column assignments.
type ArticleFlags struct {
	cmd    *cobra.Command
	values map[articles.Field]*string
	set    []string
}

// FlagName is the flag spelling of a field: link_en becomes link-en.
func FlagName(f articles.Field) string {
	return strings.ReplaceAll(f.String(), "_", "-")
}

// AddArticleFlags registers the article field flags on cmd.
func AddArticleFlags(cmd *cobra.Command) *ArticleFlags {
	a := &ArticleFlags{cmd: cmd, values: make(map[articles.Field]*string)}
	for _, f := range articles.Fields() {
		a.values[f] = cmd.Flags().String(FlagName(f), "", "Set the "+f.DefaultColumn()+" column")
	}
	cmd.Flags().StringArrayVar(&a.set, "set", nil,
		"Set any column, as \"Column=Value\" (repeatable)")
	return a
}

// Changed reports whether any field or column was given.
func (a *ArticleFlags) Changed() bool {
	if len(a.set) > 0 {
		return true
	}
	for _, f := range articles.Fields() {
		if a.cmd.Flags().Changed(FlagName(f)) {
			return true
		}
	}
	return false
}

// Apply writes the given flags into rec through cols. Only flags set on
// the command line are applied, so an update leaves other columns alone.
// A new main category clears the sub category unless one is also given.
func (a *ArticleFlags) Apply(rec *articles.Record, cols articles.Columns) error {
	changed := func(f articles.Field) bool {
		return a.cmd.Flags().Changed(FlagName(f))
	}

	if changed(articles.MainCategory) {
		rec.SetMainCategory(cols, strings.TrimSpace(*a.values[articles.MainCategory]))
	}
	for _, f := range articles.Fields() {
		if f == articles.MainCategory || !changed(f) {
			continue
		}
		v := strings.TrimSpace(*a.values[f])
		if f == articles.LinkedIn {
			v = articles.NormalizeLinkedIn(v)
		}
		rec.Set(cols.Name(f), v)
	}

	for _, assignment := range a.set {
		column, value, ok := strings.Cut(assignment, "=")
		column = strings.TrimSpace(column)
		if !ok || column == "" {
			return errors.NewValidationError("set", assignment, "must look like Column=Value")
		}
		if articles.IsEngineColumn(column) {
			return errors.NewValidationError("set", column, "is managed by docsync")
		}
		rec.Set(column, value)
	}
	return nil
}
