package utils

import "strings"

// DefaultPrefix is the top-level folder holding one sub-folder per species.
const DefaultPrefix = "images2"

// ObjectKey builds "{prefix}/{folder}/{name}". The species display name is used
// verbatim as the folder; it is not escaped or normalized.
func ObjectKey(prefix, folder, name string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return folder + "/" + name
	}
	return prefix + "/" + folder + "/" + name
}
