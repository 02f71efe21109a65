// Package frame is a small in-memory table over Arrow arrays.
//
// A Frame borrows the arrays of the table it was built from, so that table
// must outlive the Frame. Every operation returns a new Frame; filtering
// only rewrites row selections and never copies column data. Arrays the
// frame allocates itself are shared by every Frame derived from the same
// table and freed together by Release.
package frame

import (
	"errors"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

var (
	// ErrSchema reports a missing, duplicated or colliding column.
	ErrSchema = errors.New("schema mismatch")
	// ErrTypeCoercion reports a column whose type cannot serve an operation.
	ErrTypeCoercion = errors.New("type coercion")
)

type Frame struct {
	names []string
	cols  map[string]*Column
	rows  int
	owned *arena
}

// arena holds the arrays allocated on behalf of a family of frames.
type arena struct {
	arrays []arrow.Array
}

func (o *arena) add(arr arrow.Array) {
	o.arrays = append(o.arrays, arr)
}

// FromTable builds a Frame over tbl, concatenating chunked columns.
func FromTable(tbl arrow.Table, mem memory.Allocator) (*Frame, error) {
	schema := tbl.Schema()
	f := &Frame{
		names: make([]string, 0, schema.NumFields()),
		cols:  make(map[string]*Column, schema.NumFields()),
		rows:  int(tbl.NumRows()),
		owned: &arena{},
	}

	for i := 0; i < schema.NumFields(); i++ {
		field := schema.Field(i)
		if _, dup := f.cols[field.Name]; dup {
			f.Release()
			return nil, fmt.Errorf("%w: duplicate column %q", ErrSchema, field.Name)
		}

		chunks := tbl.Column(i).Data().Chunks()
		var arr arrow.Array
		switch len(chunks) {
		case 0:
			arr = array.MakeArrayOfNull(mem, field.Type, 0)
			f.owned.add(arr)
		case 1:
			arr = chunks[0]
		default:
			var err error
			arr, err = array.Concatenate(chunks, mem)
			if err != nil {
				f.Release()
				return nil, fmt.Errorf("concatenate column %q: %w", field.Name, err)
			}
			f.owned.add(arr)
		}

		f.names = append(f.names, field.Name)
		f.cols[field.Name] = &Column{arr: arr}
	}

	return f, nil
}

// Release frees the arrays allocated by every frame built from the same
// table, which must not be used afterwards. Calling it again is a no-op.
func (f *Frame) Release() {
	if f.owned == nil {
		return
	}
	for _, arr := range f.owned.arrays {
		arr.Release()
	}
	f.owned.arrays = nil
}

func (f *Frame) NumRows() int {
	return f.rows
}

// Names returns the column names in order.
func (f *Frame) Names() []string {
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out
}

func (f *Frame) Has(name string) bool {
	_, ok := f.cols[name]
	return ok
}

// Column returns the named column or ErrSchema.
func (f *Frame) Column(name string) (*Column, error) {
	c, ok := f.cols[name]
	if !ok {
		return nil, fmt.Errorf("%w: column %q not found", ErrSchema, name)
	}
	return c, nil
}

// RenameAll applies fn to every column name. Two columns landing on the
// same name is ErrSchema.
func (f *Frame) RenameAll(fn func(string) string) (*Frame, error) {
	out := f.shallow()
	out.names = out.names[:0]
	out.cols = make(map[string]*Column, len(f.names))
	for _, name := range f.names {
		renamed := fn(name)
		if _, dup := out.cols[renamed]; dup {
			return nil, fmt.Errorf("%w: columns collide on %q after renaming %q", ErrSchema, renamed, name)
		}
		out.names = append(out.names, renamed)
		out.cols[renamed] = f.cols[name]
	}
	return out, nil
}

// Rename renames the columns present in mapping; absent keys are ignored.
func (f *Frame) Rename(mapping map[string]string) (*Frame, error) {
	return f.RenameAll(func(name string) string {
		if to, ok := mapping[name]; ok {
			return to
		}
		return name
	})
}

// WithColumn adds arr under name, replacing an existing column in place.
// The frame takes ownership of arr, also on error.
func (f *Frame) WithColumn(name string, arr arrow.Array) (*Frame, error) {
	if arr.Len() != f.rows {
		arr.Release()
		return nil, fmt.Errorf("%w: column %q has %d rows, frame has %d", ErrSchema, name, arr.Len(), f.rows)
	}
	out := f.shallow()
	if _, ok := out.cols[name]; !ok {
		out.names = append(out.names, name)
	}
	out.cols[name] = &Column{arr: arr}
	if out.owned != nil {
		out.owned.add(arr)
	}
	return out, nil
}

// Filter keeps the rows where keep is true.
func (f *Frame) Filter(keep []bool) (*Frame, error) {
	if len(keep) != f.rows {
		return nil, fmt.Errorf("filter mask has %d rows, frame has %d", len(keep), f.rows)
	}
	kept := 0
	for _, k := range keep {
		if k {
			kept++
		}
	}

	out := &Frame{
		names: f.Names(),
		cols:  make(map[string]*Column, len(f.cols)),
		rows:  kept,
		owned: f.owned,
	}
	for name, c := range f.cols {
		idx := make([]int, 0, kept)
		for i, k := range keep {
			if k {
				idx = append(idx, c.pos(i))
			}
		}
		out.cols[name] = &Column{arr: c.arr, idx: idx}
	}
	return out, nil
}

// Select projects the named columns in the given order.
func (f *Frame) Select(names ...string) (*Frame, error) {
	out := &Frame{
		names: make([]string, 0, len(names)),
		cols:  make(map[string]*Column, len(names)),
		rows:  f.rows,
		owned: f.owned,
	}
	for _, name := range names {
		c, err := f.Column(name)
		if err != nil {
			return nil, err
		}
		if _, dup := out.cols[name]; dup {
			return nil, fmt.Errorf("%w: column %q selected twice", ErrSchema, name)
		}
		out.names = append(out.names, name)
		out.cols[name] = c
	}
	return out, nil
}

// Record materializes the frame as a record with the given fields. Each
// field names a column and the type its values are coerced to.
func (f *Frame) Record(mem memory.Allocator, fields []arrow.Field) (arrow.Record, error) {
	cols := make([]arrow.Array, 0, len(fields))
	defer func() {
		for _, c := range cols {
			c.Release()
		}
	}()

	for _, field := range fields {
		c, err := f.Column(field.Name)
		if err != nil {
			return nil, err
		}
		arr, err := c.materialize(mem, field.Type)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", field.Name, err)
		}
		cols = append(cols, arr)
	}

	return array.NewRecord(arrow.NewSchema(fields, nil), cols, int64(f.rows)), nil
}

func (f *Frame) shallow() *Frame {
	out := &Frame{
		names: f.Names(),
		cols:  make(map[string]*Column, len(f.cols)),
		rows:  f.rows,
		owned: f.owned,
	}
	for k, v := range f.cols {
		out.cols[k] = v
	}
	return out
}
