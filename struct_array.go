package hako

import "github.com/rotisserie/eris"

// Layout declares how many scalars of each width one record occupies in a
// StructArray.
type Layout struct {
	Int16   int
	Int32   int
	Float32 int
}

// StructDef describes how a record of type T is packed into numeric fields.
// The callbacks must consume and produce exactly the scalars declared by
// Layout; a StructArray panics with ErrStructLayoutMismatch otherwise.
//
// Example:
//
//	var vec3Def = hako.StructDef[Vec3]{
//	    Layout: hako.Layout{Float32: 3},
//	    Read: func(r *hako.StructReader) Vec3 {
//	        return Vec3{r.Float32(), r.Float32(), r.Float32()}
//	    },
//	    Write: func(w *hako.StructWriter, v Vec3) {
//	        w.PutFloat32s(v.X, v.Y, v.Z)
//	    },
//	}
type StructDef[T any] struct {
	Layout Layout
	Read   func(r *StructReader) T
	Write  func(w *StructWriter, v T)
	// Reset writes the default record. When nil, Write is called with the
	// zero value of T.
	Reset func(w *StructWriter)
}

// structBuffer holds the three flat scalar buffers of a StructArray and the
// read/write offset into each.
type structBuffer struct {
	i16    []int16
	i32    []int32
	f32    []float32
	off16  int
	off32  int
	offF32 int
}

// StructReader is the read view handed to StructDef.Read.
type StructReader structBuffer

// StructWriter is the write view handed to StructDef.Write and StructDef.Reset.
type StructWriter structBuffer

func noStorage(width string) {
	panic(eris.Wrapf(ErrNoStructStorage, "%s", width))
}

// Int16 reads one int16 field.
func (r *StructReader) Int16() int16 {
	if r.i16 == nil {
		noStorage("int16")
	}
	v := r.i16[r.off16]
	r.off16++
	return v
}

// Int16s fills dst with consecutive int16 fields.
func (r *StructReader) Int16s(dst []int16) {
	if r.i16 == nil {
		noStorage("int16")
	}
	r.off16 += copy(dst, r.i16[r.off16:r.off16+len(dst)])
}

// Int32 reads one int32 field.
func (r *StructReader) Int32() int32 {
	if r.i32 == nil {
		noStorage("int32")
	}
	v := r.i32[r.off32]
	r.off32++
	return v
}

// Int32s fills dst with consecutive int32 fields.
func (r *StructReader) Int32s(dst []int32) {
	if r.i32 == nil {
		noStorage("int32")
	}
	r.off32 += copy(dst, r.i32[r.off32:r.off32+len(dst)])
}

// Float32 reads one float32 field.
func (r *StructReader) Float32() float32 {
	if r.f32 == nil {
		noStorage("float32")
	}
	v := r.f32[r.offF32]
	r.offF32++
	return v
}

// Float32s fills dst with consecutive float32 fields.
func (r *StructReader) Float32s(dst []float32) {
	if r.f32 == nil {
		noStorage("float32")
	}
	r.offF32 += copy(dst, r.f32[r.offF32:r.offF32+len(dst)])
}

// PutInt16 writes one int16 field.
func (w *StructWriter) PutInt16(v int16) {
	if w.i16 == nil {
		noStorage("int16")
	}
	w.i16[w.off16] = v
	w.off16++
}

// PutInt16s writes consecutive int16 fields.
func (w *StructWriter) PutInt16s(vs ...int16) {
	if w.i16 == nil {
		noStorage("int16")
	}
	w.off16 += copy(w.i16[w.off16:w.off16+len(vs)], vs)
}

// PutInt32 writes one int32 field.
func (w *StructWriter) PutInt32(v int32) {
	if w.i32 == nil {
		noStorage("int32")
	}
	w.i32[w.off32] = v
	w.off32++
}

// PutInt32s writes consecutive int32 fields.
func (w *StructWriter) PutInt32s(vs ...int32) {
	if w.i32 == nil {
		noStorage("int32")
	}
	w.off32 += copy(w.i32[w.off32:w.off32+len(vs)], vs)
}

// PutFloat32 writes one float32 field.
func (w *StructWriter) PutFloat32(v float32) {
	if w.f32 == nil {
		noStorage("float32")
	}
	w.f32[w.offF32] = v
	w.offF32++
}

// PutFloat32s writes consecutive float32 fields.
func (w *StructWriter) PutFloat32s(vs ...float32) {
	if w.f32 == nil {
		noStorage("float32")
	}
	w.offF32 += copy(w.f32[w.offF32:w.offF32+len(vs)], vs)
}

// StructArray is a RawArray that packs records into three flat numeric
// buffers, one per scalar width, each sized count-per-record × capacity.
// Moving the cursor recomputes the three offsets, which is what lets a Column
// jump to an arbitrary slot for swap-removal.
type StructArray[T any] struct {
	def      StructDef[T]
	buf      structBuffer
	capacity int
	cursor   int
}

// NewStructArray allocates a StructArray for capacity records of def's shape.
// A width whose count is zero gets no buffer at all; touching it panics.
func NewStructArray[T any](def StructDef[T], capacity int) *StructArray[T] {
	if def.Read == nil || def.Write == nil {
		panic(eris.Wrap(ErrStructLayoutMismatch, "read and write callbacks are required"))
	}
	a := &StructArray[T]{def: def, capacity: capacity}
	if n := def.Layout.Int16 * capacity; n > 0 {
		a.buf.i16 = make([]int16, n)
	}
	if n := def.Layout.Int32 * capacity; n > 0 {
		a.buf.i32 = make([]int32, n)
	}
	if n := def.Layout.Float32 * capacity; n > 0 {
		a.buf.f32 = make([]float32, n)
	}
	return a
}

func (a *StructArray[T]) Cap() int    { return a.capacity }
func (a *StructArray[T]) Cursor() int { return a.cursor }

// SetCursor moves the cursor and recomputes the per-width offsets.
func (a *StructArray[T]) SetCursor(pos int) {
	if pos == a.cursor {
		return
	}
	l := a.def.Layout
	a.buf.off16 = l.Int16 * pos
	a.buf.off32 = l.Int32 * pos
	a.buf.offF32 = l.Float32 * pos
	a.cursor = pos
}

func (a *StructArray[T]) Read() T {
	v := a.def.Read((*StructReader)(&a.buf))
	a.advance()
	return v
}

func (a *StructArray[T]) Write(v T) {
	a.def.Write((*StructWriter)(&a.buf), v)
	a.advance()
}

func (a *StructArray[T]) Reset() {
	w := (*StructWriter)(&a.buf)
	if a.def.Reset != nil {
		a.def.Reset(w)
	} else {
		var zero T
		a.def.Write(w, zero)
	}
	a.advance()
}

// advance bumps the cursor after a callback ran and verifies the callback
// consumed exactly one record worth of fields.
func (a *StructArray[T]) advance() {
	a.cursor++
	l := a.def.Layout
	if a.buf.off16 != l.Int16*a.cursor || a.buf.off32 != l.Int32*a.cursor || a.buf.offF32 != l.Float32*a.cursor {
		panic(eris.Wrapf(ErrStructLayoutMismatch, "declared %+v", l))
	}
}
