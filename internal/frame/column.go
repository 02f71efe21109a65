package frame

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Column is a read-only view over an Arrow array. Row i of the view is
// row idx[i] of the array; a nil idx is the identity mapping.
type Column struct {
	arr arrow.Array
	idx []int
}

func (c *Column) Len() int {
	if c.idx == nil {
		return c.arr.Len()
	}
	return len(c.idx)
}

func (c *Column) pos(i int) int {
	if c.idx == nil {
		return i
	}
	return c.idx[i]
}

func (c *Column) DataType() arrow.DataType {
	return c.arr.DataType()
}

// IsNull reports whether row i is null. NaN counts as null in floating
// columns.
func (c *Column) IsNull(i int) bool {
	p := c.pos(i)
	if c.arr.IsNull(p) {
		return true
	}
	switch a := c.arr.(type) {
	case *array.Float64:
		return math.IsNaN(a.Value(p))
	case *array.Float32:
		return math.IsNaN(float64(a.Value(p)))
	case *array.Float16:
		return math.IsNaN(float64(a.Value(p).Float32()))
	}
	return false
}

// Float64s returns the column as float64 values. Integer and boolean
// columns are widened; any other type is ErrTypeCoercion.
func (c *Column) Float64s() (vals []float64, valid []bool, err error) {
	if !isNumeric(c.arr.DataType()) {
		return nil, nil, fmt.Errorf("%w: %s is not numeric", ErrTypeCoercion, c.arr.DataType())
	}
	n := c.Len()
	vals = make([]float64, n)
	valid = make([]bool, n)
	for i := 0; i < n; i++ {
		if c.IsNull(i) {
			continue
		}
		vals[i] = numericAt(c.arr, c.pos(i))
		valid[i] = true
	}
	return vals, valid, nil
}

// Bools returns the column as booleans. Numeric columns are true when
// non-zero; any other type is ErrTypeCoercion.
func (c *Column) Bools() (vals []bool, valid []bool, err error) {
	b, isBool := c.arr.(*array.Boolean)
	if !isBool && !isNumeric(c.arr.DataType()) {
		return nil, nil, fmt.Errorf("%w: %s is not boolean", ErrTypeCoercion, c.arr.DataType())
	}
	n := c.Len()
	vals = make([]bool, n)
	valid = make([]bool, n)
	for i := 0; i < n; i++ {
		if c.IsNull(i) {
			continue
		}
		p := c.pos(i)
		if isBool {
			vals[i] = b.Value(p)
		} else {
			vals[i] = numericAt(c.arr, p) != 0
		}
		valid[i] = true
	}
	return vals, valid, nil
}

// Strings returns the column as strings. Non-string types use their
// Arrow value formatting.
func (c *Column) Strings() (vals []string, valid []bool) {
	n := c.Len()
	vals = make([]string, n)
	valid = make([]bool, n)
	for i := 0; i < n; i++ {
		if c.IsNull(i) {
			continue
		}
		p := c.pos(i)
		switch a := c.arr.(type) {
		case *array.String:
			vals[i] = a.Value(p)
		case *array.LargeString:
			vals[i] = a.Value(p)
		default:
			vals[i] = a.ValueStr(p)
		}
		valid[i] = true
	}
	return vals, valid
}

// Times returns a timestamp column as UTC instants.
func (c *Column) Times() (vals []time.Time, valid []bool, err error) {
	ts, ok := c.arr.(*array.Timestamp)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s is not a timestamp", ErrTypeCoercion, c.arr.DataType())
	}
	unit := ts.DataType().(*arrow.TimestampType).Unit
	n := c.Len()
	vals = make([]time.Time, n)
	valid = make([]bool, n)
	for i := 0; i < n; i++ {
		p := c.pos(i)
		if ts.IsNull(p) {
			continue
		}
		vals[i] = ts.Value(p).ToTime(unit)
		valid[i] = true
	}
	return vals, valid, nil
}

// JoinLists renders each list cell as its elements joined by sep. Null
// elements render as "". Null cells, and every cell of a non-list column,
// are invalid.
func (c *Column) JoinLists(sep string) (vals []string, valid []bool) {
	n := c.Len()
	vals = make([]string, n)
	valid = make([]bool, n)
	l, ok := c.arr.(array.ListLike)
	if !ok {
		return vals, valid
	}
	elems := l.ListValues()
	var sb strings.Builder
	for i := 0; i < n; i++ {
		p := c.pos(i)
		if l.IsNull(p) {
			continue
		}
		start, end := l.ValueOffsets(p)
		sb.Reset()
		for j := start; j < end; j++ {
			if j > start {
				sb.WriteString(sep)
			}
			if !elems.IsNull(int(j)) {
				sb.WriteString(elems.ValueStr(int(j)))
			}
		}
		vals[i] = sb.String()
		valid[i] = true
	}
	return vals, valid
}

// materialize copies the view into a new array of type dt.
func (c *Column) materialize(mem memory.Allocator, dt arrow.DataType) (arrow.Array, error) {
	switch dt.ID() {
	case arrow.FLOAT64:
		vals, valid, err := c.Float64s()
		if err != nil {
			return nil, err
		}
		return Float64Array(mem, vals, valid), nil
	case arrow.STRING:
		vals, valid := c.Strings()
		return StringArray(mem, vals, valid), nil
	case arrow.TIMESTAMP:
		src, ok := c.arr.(*array.Timestamp)
		if !ok || !arrow.TypeEqual(src.DataType(), dt) {
			return nil, fmt.Errorf("%w: cannot write %s as %s", ErrTypeCoercion, c.arr.DataType(), dt)
		}
		b := array.NewTimestampBuilder(mem, dt.(*arrow.TimestampType))
		defer b.Release()
		b.Reserve(c.Len())
		for i := 0; i < c.Len(); i++ {
			p := c.pos(i)
			if src.IsNull(p) {
				b.AppendNull()
				continue
			}
			b.Append(src.Value(p))
		}
		return b.NewArray(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported output type %s", ErrTypeCoercion, dt)
	}
}

// Float64Array builds a float64 array; rows with valid[i] false are null.
func Float64Array(mem memory.Allocator, vals []float64, valid []bool) arrow.Array {
	b := array.NewFloat64Builder(mem)
	defer b.Release()
	b.AppendValues(vals, valid)
	return b.NewArray()
}

// StringArray builds a UTF-8 array; rows with valid[i] false are null.
func StringArray(mem memory.Allocator, vals []string, valid []bool) arrow.Array {
	b := array.NewStringBuilder(mem)
	defer b.Release()
	b.AppendValues(vals, valid)
	return b.NewArray()
}

func isNumeric(dt arrow.DataType) bool {
	id := dt.ID()
	return arrow.IsInteger(id) || arrow.IsFloating(id) || id == arrow.BOOL
}

func numericAt(arr arrow.Array, p int) float64 {
	switch a := arr.(type) {
	case *array.Float64:
		return a.Value(p)
	case *array.Float32:
		return float64(a.Value(p))
	case *array.Float16:
		return float64(a.Value(p).Float32())
	case *array.Int8:
		return float64(a.Value(p))
	case *array.Int16:
		return float64(a.Value(p))
	case *array.Int32:
		return float64(a.Value(p))
	case *array.Int64:
		return float64(a.Value(p))
	case *array.Uint8:
		return float64(a.Value(p))
	case *array.Uint16:
		return float64(a.Value(p))
	case *array.Uint32:
		return float64(a.Value(p))
	case *array.Uint64:
		return float64(a.Value(p))
	case *array.Boolean:
		if a.Value(p) {
			return 1
		}
		return 0
	}
	return math.NaN()
}
