package domain

// Classification is a named label attached to citations through a join
// table. Categories and tags are the two instantiations — same structure
// and behavior, separate namespaces. A classification is created lazily on
// first use and deleted by the orphan sweep once its last citation link is
// removed.
type Classification struct {
	ID   int64
	Name string
}

func (c Classification) String() string { return c.Name }

// ClassificationNames extracts the names from a classification list.
func ClassificationNames(list []Classification) []string {
	names := make([]string, len(list))
	for i, c := range list {
		names[i] = c.Name
	}
	return names
}

// ClassificationIDs extracts the IDs from a classification list.
func ClassificationIDs(list []Classification) []int64 {
	ids := make([]int64, len(list))
	for i, c := range list {
		ids[i] = c.ID
	}
	return ids
}
