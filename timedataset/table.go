package timedataset

import (
	"fmt"
	"sort"
	"time"
)

// Table is a gap-free daily table of named columns. Every column has one cell
// per calendar day from start to End(). Missing cells are explicit Values.
type Table struct {
	start time.Time
	n     int

	names []string
	cols  map[string][]Value
}

// NewTable returns an empty table with n rows starting at start
func NewTable(start time.Time, n int) *Table {
	if n < 0 {
		n = 0
	}
	return &Table{
		start: TruncateDay(start),
		n:     n,
		cols:  make(map[string][]Value),
	}
}

// NewTableFromRecords builds a table from row dates and column cells aligned to
// those dates. Dates may come in any order and may skip days; the result is
// reindexed to a contiguous daily range with missing cells for the skipped days.
// Two rows on the same calendar day are rejected.
func NewTableFromRecords(dates []time.Time, names []string, cols map[string][]Value) (*Table, error) {
	if len(dates) == 0 {
		return nil, ErrNoTrainingData
	}
	for _, name := range names {
		col, exists := cols[name]
		if !exists {
			return nil, fmt.Errorf("%s, %w", name, ErrUnknownColumn)
		}
		if len(col) != len(dates) {
			return nil, fmt.Errorf(
				"column %s has length of %d, but dates has a length of %d, %w",
				name, len(col), len(dates), ErrDatasetLenMismatch,
			)
		}
	}

	order := make([]int, len(dates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return dates[order[i]].Before(dates[order[j]])
	})

	start := TruncateDay(dates[order[0]])
	end := TruncateDay(dates[order[len(order)-1]])
	tbl := NewTable(start, DaysBetween(start, end)+1)
	for _, name := range names {
		tbl.addColumn(name)
	}

	var last time.Time
	for k, i := range order {
		d := TruncateDay(dates[i])
		if k > 0 && d.Equal(last) {
			return nil, fmt.Errorf("%s, %w", FormatDate(d), ErrDuplicateDate)
		}
		last = d
		row := DaysBetween(start, d)
		for _, name := range names {
			tbl.cols[name][row] = cols[name][i]
		}
	}
	return tbl, nil
}

// Start returns the first calendar day
func (t *Table) Start() time.Time {
	return t.start
}

// End returns the last calendar day. An empty table ends the day before start.
func (t *Table) End() time.Time {
	return AddDays(t.start, t.n-1)
}

// Len returns the number of rows
func (t *Table) Len() int {
	return t.n
}

// Dates returns the calendar day of every row
func (t *Table) Dates() TimeSlice {
	return DateRange(t.start, t.End())
}

// Columns returns the column names in insertion order
func (t *Table) Columns() []string {
	names := make([]string, len(t.names))
	copy(names, t.names)
	return names
}

// HasColumn reports whether a column exists
func (t *Table) HasColumn(name string) bool {
	_, exists := t.cols[name]
	return exists
}

// Column returns a copy of a column's cells
func (t *Table) Column(name string) ([]Value, error) {
	col, exists := t.cols[name]
	if !exists {
		return nil, fmt.Errorf("%s, %w", name, ErrUnknownColumn)
	}
	res := make([]Value, len(col))
	copy(res, col)
	return res, nil
}

// At returns the cell for a column and date. Unknown columns and dates outside
// the table are missing.
func (t *Table) At(name string, date time.Time) Value {
	col, exists := t.cols[name]
	if !exists {
		return None()
	}
	i := DaysBetween(t.start, date)
	if i < 0 || i >= t.n {
		return None()
	}
	return col[i]
}

// Set writes a cell. The column is created if needed with missing cells for
// every other row, and the table grows with missing rows if date is past End().
func (t *Table) Set(name string, date time.Time, v Value) error {
	i := DaysBetween(t.start, date)
	if i < 0 {
		return fmt.Errorf("%s, %w", FormatDate(date), ErrDateBeforeStart)
	}
	t.grow(i + 1)
	if !t.HasColumn(name) {
		t.addColumn(name)
	}
	t.cols[name][i] = v
	return nil
}

// Fill writes a cell only if it is currently missing and reports whether it
// wrote.
func (t *Table) Fill(name string, date time.Time, v Value) (bool, error) {
	if t.At(name, date).Valid() {
		return false, nil
	}
	if err := t.Set(name, date, v); err != nil {
		return false, err
	}
	return true, nil
}

// SetColumn replaces or adds a whole column. The cells must match the row count.
func (t *Table) SetColumn(name string, cells []Value) error {
	if len(cells) != t.n {
		return fmt.Errorf(
			"column %s has length of %d, but table has %d rows, %w",
			name, len(cells), t.n, ErrDatasetLenMismatch,
		)
	}
	if !t.HasColumn(name) {
		t.addColumn(name)
	}
	copy(t.cols[name], cells)
	return nil
}

// DropColumns removes columns, ignoring names that do not exist
func (t *Table) DropColumns(names ...string) {
	for _, name := range names {
		if !t.HasColumn(name) {
			continue
		}
		delete(t.cols, name)
		for i, existing := range t.names {
			if existing == name {
				t.names = append(t.names[:i], t.names[i+1:]...)
				break
			}
		}
	}
}

// RenameColumn renames a column keeping its position. Unknown columns are
// ignored and an existing destination column is replaced.
func (t *Table) RenameColumn(from, to string) {
	col, exists := t.cols[from]
	if !exists || from == to {
		return
	}
	t.DropColumns(to)
	delete(t.cols, from)
	t.cols[to] = col
	for i, existing := range t.names {
		if existing == from {
			t.names[i] = to
			break
		}
	}
}

// FillForward propagates the last present value of a column forward over
// missing cells. Leading missing cells stay missing.
func (t *Table) FillForward(name string) error {
	col, exists := t.cols[name]
	if !exists {
		return fmt.Errorf("%s, %w", name, ErrUnknownColumn)
	}
	last := None()
	for i, v := range col {
		if v.Valid() {
			last = v
			continue
		}
		col[i] = last
	}
	return nil
}

// FillInterior forward fills the missing cells that lie between two present
// values. Leading and trailing missing cells stay missing.
func (t *Table) FillInterior(name string) error {
	col, exists := t.cols[name]
	if !exists {
		return fmt.Errorf("%s, %w", name, ErrUnknownColumn)
	}
	end := len(col) - 1
	for end >= 0 && !col[end].Valid() {
		end--
	}
	last := None()
	for i := 0; i < end; i++ {
		if col[i].Valid() {
			last = col[i]
			continue
		}
		col[i] = last
	}
	return nil
}

// FillBackward propagates the next present value of a column backward over
// missing cells. Trailing missing cells stay missing.
func (t *Table) FillBackward(name string) error {
	col, exists := t.cols[name]
	if !exists {
		return fmt.Errorf("%s, %w", name, ErrUnknownColumn)
	}
	next := None()
	for i := len(col) - 1; i >= 0; i-- {
		if col[i].Valid() {
			next = col[i]
			continue
		}
		col[i] = next
	}
	return nil
}

// Slice returns a copy of the rows from start to end inclusive, clamped to the
// table range. An empty range yields an empty table starting at start.
func (t *Table) Slice(start, end time.Time) *Table {
	start = TruncateDay(start)
	end = TruncateDay(end)
	if start.Before(t.start) {
		start = t.start
	}
	if end.After(t.End()) {
		end = t.End()
	}
	lo := DaysBetween(t.start, start)
	hi := DaysBetween(t.start, end) + 1
	if lo > t.n {
		lo = t.n
	}
	if hi < lo {
		hi = lo
	}

	res := NewTable(AddDays(t.start, lo), hi-lo)
	for _, name := range t.names {
		res.addColumn(name)
		copy(res.cols[name], t.cols[name][lo:hi])
	}
	return res
}

// TruncateFrom drops every row on or after date
func (t *Table) TruncateFrom(date time.Time) {
	i := DaysBetween(t.start, date)
	if i < 0 {
		i = 0
	}
	if i >= t.n {
		return
	}
	t.n = i
	for name, col := range t.cols {
		t.cols[name] = col[:i:i]
	}
}

// Series returns a column as a Series. Every cell must be present.
func (t *Table) Series(name string) (*Series, error) {
	col, exists := t.cols[name]
	if !exists {
		return nil, fmt.Errorf("%s, %w", name, ErrUnknownColumn)
	}
	y := make([]float64, len(col))
	for i, v := range col {
		val, ok := v.Get()
		if !ok {
			return nil, fmt.Errorf("%s on %s, %w", name, FormatDate(AddDays(t.start, i)), ErrMissingValue)
		}
		y[i] = val
	}
	return NewSeries(t.start, y), nil
}

// Copy returns an independent copy of the table
func (t *Table) Copy() *Table {
	return t.Slice(t.start, t.End())
}

func (t *Table) addColumn(name string) {
	t.names = append(t.names, name)
	t.cols[name] = make([]Value, t.n)
}

func (t *Table) grow(n int) {
	if n <= t.n {
		return
	}
	for name, col := range t.cols {
		ext := make([]Value, n)
		copy(ext, col)
		t.cols[name] = ext
	}
	t.n = n
}
