package domain

// EntryType classifies a citation (book, article, inproceedings, ...).
// Read-mostly reference data: looked up by citation operations, never
// created or mutated by them.
type EntryType struct {
	ID   int64
	Name string
}

func (t EntryType) String() string { return t.Name }
