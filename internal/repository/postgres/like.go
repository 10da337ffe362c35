package postgres

import "strings"

// likeEscaper neutralizes LIKE/ILIKE metacharacters so user-supplied
// keywords match as literal substrings. Queries using escaped keywords
// must carry an ESCAPE '\' clause.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
