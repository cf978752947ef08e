package facts

// FilterTablesByFiles returns a new Tables containing only rows whose
// source file is present in the given set.
func FilterTablesByFiles(tables Tables, files map[string]bool) Tables {
	var out Tables
	if len(files) == 0 {
		return out
	}

	for _, row := range tables.Instructions {
		if files[row.File] {
			out.Instructions = append(out.Instructions, row)
		}
	}
	for _, row := range tables.Fields {
		if files[row.File] {
			out.Fields = append(out.Fields, row)
		}
	}
	for _, row := range tables.Segments {
		if files[row.File] {
			out.Segments = append(out.Segments, row)
		}
	}
	for _, row := range tables.Diagnostics {
		if files[row.File] {
			out.Diagnostics = append(out.Diagnostics, row)
		}
	}

	return out
}
