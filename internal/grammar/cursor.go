package grammar

import "regexp"

// Completion contexts, matched against the line text before the cursor.
var (
	commandPrefixRe   = regexp.MustCompile(`^\s*(@bypass /|@command /|@console /)[a-z]*$`)
	keywordPrefixRe   = regexp.MustCompile(`^\s*(@)?[a-z]+$`)
	namespaceAccessRe = regexp.MustCompile(`(?:^|[\s(\[{+\-*/!=<>&|,])([a-zA-Z][a-zA-Z0-9_]*)::[a-zA-Z0-9_]*$`)
	identStartRe      = regexp.MustCompile(`[\s(\[{+\-*/!=<>&|,](?:[a-zA-Z][a-zA-Z0-9_]*)?$`)
	memberAccessRe    = regexp.MustCompile(`\.(?:[a-z][a-zA-Z0-9_]*)?$`)
)

// InCommandArgument reports a cursor right after "@bypass /" and friends.
func InCommandArgument(prefix string) bool {
	return commandPrefixRe.MatchString(prefix)
}

// KeywordPrefix reports a line holding only a partial keyword. hasAt is
// true when the user already typed the "@".
func KeywordPrefix(prefix string) (hasAt bool, ok bool) {
	m := keywordPrefixRe.FindStringSubmatch(prefix)
	if m == nil {
		return false, false
	}
	return m[1] == "@", true
}

// NamespaceAccess returns ns for a prefix ending in "ns::partial".
func NamespaceAccess(prefix string) (string, bool) {
	m := namespaceAccessRe.FindStringSubmatch(prefix)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// IdentifierStart reports a separator followed by an optional partial identifier.
func IdentifierStart(prefix string) bool {
	return identStartRe.MatchString(prefix)
}

// MemberAccess reports a prefix ending in "." plus an optional lowercase partial.
func MemberAccess(prefix string) bool {
	return memberAccessRe.MatchString(prefix)
}
