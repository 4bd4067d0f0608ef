package archetypedb

import (
	"math"
	"unsafe"

	"github.com/pkg/errors"
)

// minOccupied is the smallest capacity a non-empty ComponentArray grows
// to.
const minOccupied = 8

// ComponentArray is a type-erased, aligned column of component values.
// Values are stored back to back at meta.Stride spacing; a zero-sized
// component (a tag with no payload) never allocates and only tracks a
// row count.
type ComponentArray struct {
	meta     ComponentMeta
	raw      []byte
	data     []byte
	length   int
	capacity int

	growMinOccupied int
	growNumerator   int
	growDenominator int
}

func newComponentArray(meta ComponentMeta) *ComponentArray {
	return &ComponentArray{meta: meta}
}

// configureGrowth overrides the array's growth heuristics with values
// taken from an EngineConfig; a non-positive value leaves the built-in
// default for that parameter in place, so a zero-value EngineConfig is
// equivalent to not calling this at all.
func (c *ComponentArray) configureGrowth(minOccupied, numerator, denominator int) {
	if minOccupied > 0 {
		c.growMinOccupied = minOccupied
	}
	if numerator > 0 && denominator > 0 {
		c.growNumerator = numerator
		c.growDenominator = denominator
	}
}

// alignedWindow carves out the first meta.Align-aligned window of size
// bytes within raw, via pointer arithmetic over a plain byte slice rather
// than a dedicated arena allocator.
func alignedWindow(raw []byte, align uintptr, size uintptr) []byte {
	if len(raw) == 0 {
		return raw
	}
	base := uintptr(unsafe.Pointer(&raw[0]))
	var offset uintptr
	if rem := base % align; rem != 0 {
		offset = align - rem
	}
	return raw[offset : offset+size]
}

func (c *ComponentArray) realloc(newCap int) {
	stride := c.meta.Stride
	if stride == 0 {
		c.capacity = newCap
		return
	}
	if newCap == 0 {
		c.raw, c.data = nil, nil
		c.capacity = 0
		return
	}
	align := c.meta.Align
	if align == 0 {
		align = 1
	}
	needed := uintptr(newCap) * stride
	if newCap != 0 && needed/uintptr(newCap) != stride {
		panic(errors.Wrapf(ErrOutOfMemory, "component array: capacity %d at stride %d overflows", newCap, stride))
	}
	if needed > uintptr(math.MaxInt-int(align)) {
		panic(errors.Wrapf(ErrOutOfMemory, "component array: requested %d bytes overflows", needed))
	}
	raw := make([]byte, needed+align-1)
	data := alignedWindow(raw, align, needed)
	if c.length > 0 {
		keep := uintptr(c.length) * stride
		if keep > needed {
			keep = needed
		}
		copy(data, c.data[:keep])
	}
	c.raw = raw
	c.data = data
	c.capacity = newCap
}

func (c *ComponentArray) ensureTotalCapacity(n int) {
	if n <= c.capacity {
		return
	}
	num, denom := c.growNumerator, c.growDenominator
	if num <= 0 || denom <= 0 {
		num, denom = 3, 2
	}
	floor := c.growMinOccupied
	if floor <= 0 {
		floor = minOccupied
	}
	newCap := c.capacity * num / denom
	if newCap < n {
		newCap = n
	}
	if newCap < floor {
		newCap = floor
	}
	c.realloc(newCap)
}

// EnsureCapacity grows the array, if necessary, so that n more elements
// can be appended without reallocating.
func (c *ComponentArray) EnsureCapacity(n int) {
	c.ensureTotalCapacity(c.length + n)
}

// EnsureTotalCapacity grows the array, if necessary, so that its total
// capacity is at least n elements.
func (c *ComponentArray) EnsureTotalCapacity(n int) {
	c.ensureTotalCapacity(n)
}

// ShrinkAndFree reallocates the array's backing storage down to capacity
// max(n, Len()), releasing the rest; it never discards live elements.
// Passing 0 frees the backing storage entirely once the array is empty.
func (c *ComponentArray) ShrinkAndFree(n int) {
	if n < 0 {
		n = 0
	}
	if n < c.length {
		n = c.length
	}
	c.realloc(n)
}

// ClearRetainingCapacity sets the array's length to zero without
// releasing its backing storage.
func (c *ComponentArray) ClearRetainingCapacity() {
	c.length = 0
}

// Len returns the number of elements currently stored.
func (c *ComponentArray) Len() int {
	return c.length
}

func (c *ComponentArray) checkValue(value []byte) error {
	if c.meta.Stride == 0 {
		return nil
	}
	if uintptr(len(value)) != c.meta.Size {
		return errors.Wrapf(ErrTypeMismatch, "component array: value size %d != component size %d", len(value), c.meta.Size)
	}
	return nil
}

// Get returns a pointer to element i's raw bytes, or (nil, false) if i is
// out of bounds or the component is zero-sized. A zero-sized component
// has no addressable payload, so presence must be checked through the
// owning archetype's set or a query instead of through Get.
func (c *ComponentArray) Get(i int) (unsafe.Pointer, bool) {
	if i < 0 || i >= c.length || c.meta.Stride == 0 {
		return nil, false
	}
	return unsafe.Pointer(&c.data[uintptr(i)*c.meta.Stride]), true
}

// Set overwrites element i's payload with value.
func (c *ComponentArray) Set(i int, value []byte) error {
	if i < 0 || i >= c.length {
		return errors.Wrapf(ErrIndexOutOfBounds, "component array: set index %d (len %d)", i, c.length)
	}
	if err := c.checkValue(value); err != nil {
		return err
	}
	if c.meta.Stride == 0 {
		return nil
	}
	copy(c.data[uintptr(i)*c.meta.Stride:], value)
	return nil
}

// Append adds value as a new last element.
func (c *ComponentArray) Append(value []byte) error {
	if err := c.checkValue(value); err != nil {
		return err
	}
	c.ensureTotalCapacity(c.length + 1)
	if c.meta.Stride > 0 {
		copy(c.data[uintptr(c.length)*c.meta.Stride:], value)
	}
	c.length++
	return nil
}

// Insert shifts every element at or after i one slot to the right and
// stores value at i.
func (c *ComponentArray) Insert(i int, value []byte) error {
	if i < 0 || i > c.length {
		return errors.Wrapf(ErrIndexOutOfBounds, "component array: insert index %d (len %d)", i, c.length)
	}
	if err := c.checkValue(value); err != nil {
		return err
	}
	c.ensureTotalCapacity(c.length + 1)
	if c.meta.Stride > 0 {
		stride := c.meta.Stride
		copy(c.data[uintptr(i+1)*stride:uintptr(c.length+1)*stride], c.data[uintptr(i)*stride:uintptr(c.length)*stride])
		copy(c.data[uintptr(i)*stride:], value)
	}
	c.length++
	return nil
}

// ShiftRemove removes element i, shifting every later element left by
// one slot to preserve order.
func (c *ComponentArray) ShiftRemove(i int) error {
	if i < 0 || i >= c.length {
		return errors.Wrapf(ErrIndexOutOfBounds, "component array: shift remove index %d (len %d)", i, c.length)
	}
	if c.meta.Stride > 0 {
		stride := c.meta.Stride
		copy(c.data[uintptr(i)*stride:uintptr(c.length-1)*stride], c.data[uintptr(i+1)*stride:uintptr(c.length)*stride])
	}
	c.length--
	return nil
}

// SwapRemove removes element i by moving the last element into its slot,
// which does not preserve order but avoids shifting the rest of the
// array.
func (c *ComponentArray) SwapRemove(i int) error {
	if i < 0 || i >= c.length {
		return errors.Wrapf(ErrIndexOutOfBounds, "component array: swap remove index %d (len %d)", i, c.length)
	}
	last := c.length - 1
	if c.meta.Stride > 0 && i != last {
		stride := c.meta.Stride
		copy(c.data[uintptr(i)*stride:uintptr(i+1)*stride], c.data[uintptr(last)*stride:uintptr(last+1)*stride])
	}
	c.length--
	return nil
}
