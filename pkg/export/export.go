package export

import "fmt"

// Table is one titled block of tabular rows.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// Document groups tables under a title.
type Document struct {
	Title  string
	Tables []Table
}

func (d Document) validate() error {
	if len(d.Tables) == 0 {
		return fmt.Errorf("document %q has no tables", d.Title)
	}
	for _, table := range d.Tables {
		if len(table.Headers) == 0 {
			return fmt.Errorf("table %q requires at least one header", table.Name)
		}
		for i, row := range table.Rows {
			if len(row) != len(table.Headers) {
				return fmt.Errorf("table %q row %d has %d cells, want %d", table.Name, i, len(row), len(table.Headers))
			}
		}
	}
	return nil
}
