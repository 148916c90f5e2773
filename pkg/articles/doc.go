// Package articles holds the canonical catalog record model and the read-path
// transforms that turn a raw remote snapshot into it.
//
// A remote snapshot is a JSON array of loosely-typed objects ([RawRow]). Each
// row keeps the column order the remote store used. [Dedupe] collapses a
// snapshot into a unique, identity-keyed, sorted set of [Record] values:
//
//	rows, err := articles.ParseRows(body)
//	if err != nil {
//		return err
//	}
//	records := articles.Dedupe(rows)
//
// Logical fields such as the title or the English link are reached through
// the closed [Field] enum. [ResolveColumns] maps each field to the concrete
// column name used by the current header set.
package articles
