package partner

import (
	"regexp"
	"strings"
)

// legacySuffix matches the trailing -<digits> appended to codes under the
// old numbering convention (SLSICHWAN-1, SLSICHWAN-2, ...).
var legacySuffix = regexp.MustCompile(`-[0-9]+$`)

// Normalize trims whitespace and upper-cases a raw partner code. Empty input
// yields an empty string; callers reject empty codes separately.
func Normalize(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// BaseCode strips a trailing legacy suffix. Internal hyphens and non-trailing
// digit groups are left untouched, so BaseCode is idempotent.
func BaseCode(code string) string {
	return legacySuffix.ReplaceAllString(code, "")
}

// IsLegacy reports whether code carries a legacy numeric suffix.
func IsLegacy(code string) bool {
	return legacySuffix.MatchString(code)
}

// FamilyPattern returns the POSIX regex matching legacy children of base,
// suitable for the Postgres ~ operator.
func FamilyPattern(base string) string {
	return "^" + regexp.QuoteMeta(base) + "-[0-9]+$"
}

// InFamily is the membership predicate behind the unification resolver: a
// stored record (code, parentCode) belongs to the family of base when it is
// the base itself, points at the base, or is a legacy child of the base.
// The repository pushes the same predicate into SQL as a single OR clause.
func InFamily(code, parentCode, base string) bool {
	if base == "" {
		return false
	}
	if code == base || parentCode == base {
		return true
	}
	return IsLegacy(code) && BaseCode(code) == base
}
