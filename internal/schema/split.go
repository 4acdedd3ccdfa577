package schema

// Split exposes the type parser: it splits a declared type (optionality
// suffix allowed) into its base name and top-level type parameters. params is
// nil for scalars.
func Split(declared string) (base string, params []string, err error) {
	return splitType(BaseType(declared))
}
