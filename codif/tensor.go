package codif

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Tensor is a dense row-major array of complex samples.
type Tensor struct {
	shape   []int
	strides []int
	data    []complex128
}

func newTensor(shape ...int) *Tensor {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return tensorOver(make([]complex128, n), shape)
}

func tensorOver(data []complex128, shape []int) *Tensor {
	t := &Tensor{
		shape:   append([]int(nil), shape...),
		strides: make([]int, len(shape)),
		data:    data,
	}
	stride := 1
	for i := len(shape) - 1; i >= 0; i-- {
		t.strides[i] = stride
		stride *= shape[i]
	}
	return t
}

// Shape returns the extent of each axis.
func (t *Tensor) Shape() []int {
	return append([]int(nil), t.shape...)
}

// Rank returns the number of axes.
func (t *Tensor) Rank() int {
	return len(t.shape)
}

// Len returns the number of elements.
func (t *Tensor) Len() int {
	return len(t.data)
}

// Raw returns the backing slice in row-major order. It is shared with t.
func (t *Tensor) Raw() []complex128 {
	return t.data
}

// At returns the element at idx. It panics if idx does not address an
// element, like mat.CDense.At.
func (t *Tensor) At(idx ...int) complex128 {
	return t.data[t.offset(idx)]
}

func (t *Tensor) offset(idx []int) int {
	if len(idx) != len(t.shape) {
		panic(fmt.Sprintf("codif: tensor of rank %d indexed with %d indices", len(t.shape), len(idx)))
	}
	off := 0
	for i, x := range idx {
		if x < 0 || x >= t.shape[i] {
			panic(fmt.Sprintf("codif: index %d out of range for axis %d of extent %d", x, i, t.shape[i]))
		}
		off += x * t.strides[i]
	}
	return off
}

// Plane returns the matrix spanned by the last two axes at the given
// leading indices. The matrix shares storage with t.
//
// For an unflattened dataset tensor, Plane(s, g, th) is the
// channel × sample matrix of station s, group g, thread th.
func (t *Tensor) Plane(lead ...int) *mat.CDense {
	if len(t.shape) < 2 || len(lead) != len(t.shape)-2 {
		panic(fmt.Sprintf("codif: Plane of rank %d tensor needs %d indices, got %d", len(t.shape), len(t.shape)-2, len(lead)))
	}
	idx := append(append([]int(nil), lead...), 0, 0)
	off := t.offset(idx)
	rows, cols := t.shape[len(t.shape)-2], t.shape[len(t.shape)-1]
	return mat.NewCDense(rows, cols, t.data[off:off+rows*cols])
}

// Reshape returns a tensor with the given shape sharing storage with t.
func (t *Tensor) Reshape(shape ...int) (*Tensor, error) {
	n := 1
	for _, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("codif: negative extent in shape %v", shape)
		}
		n *= d
	}
	if n != len(t.data) {
		return nil, fmt.Errorf("codif: cannot reshape %v (%d elements) to %v", t.shape, len(t.data), shape)
	}
	return tensorOver(t.data, shape), nil
}
