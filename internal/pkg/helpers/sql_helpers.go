package helpers

import "database/sql"

// GetContentNullString converts a string value to sql.NullString.
// If the string is empty, returns an empty NullString.
// Otherwise, returns a valid NullString with the string value.
func GetContentNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// StringOrDefault returns the value of ns, or fallback when ns is NULL or empty.
func StringOrDefault(ns sql.NullString, fallback string) string {
	if !ns.Valid || ns.String == "" {
		return fallback
	}
	return ns.String
}
