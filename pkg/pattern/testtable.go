package pattern

// TestTable is a labelled list of items with a status each: the issues of
// one file, the phases of a run, or the fixes that did not apply.
type TestTable struct {
	Label   string
	Source  string // section or tool the table came from, if any
	Results []TestTableItem
}

// TestTableItem is a single row.
type TestTableItem struct {
	Name     string // "rule:line:col" for issue tables
	Status   string // "pass", "fail", "skip", "wip"
	Duration string
	Count    int
	Details  string
}

func (t *TestTable) Type() PatternType { return PatternTypeTestTable }
