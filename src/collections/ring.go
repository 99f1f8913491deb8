package collections

// Ring is a fixed-capacity sliding window. Push is O(1) and evicts the
// oldest element once the buffer is full, so a quiet market can never grow
// it without bound.
type Ring[T any] struct {
	buf  []T
	head int
	size int
}

func NewRing[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		capacity = 1
	}

	return &Ring[T]{
		buf: make([]T, capacity),
	}
}

func (r *Ring[T]) Push(v T) {
	if r.size < len(r.buf) {
		r.buf[(r.head+r.size)%len(r.buf)] = v
		r.size++
		return
	}

	r.buf[r.head] = v
	r.head = (r.head + 1) % len(r.buf)
}

// Values returns the window contents oldest-first.
func (r *Ring[T]) Values() []T {
	out := make([]T, 0, r.size)
	for i := 0; i < r.size; i++ {
		out = append(out, r.buf[(r.head+i)%len(r.buf)])
	}

	return out
}

func (r *Ring[T]) Len() int {
	return r.size
}

func (r *Ring[T]) Cap() int {
	return len(r.buf)
}

func (r *Ring[T]) Full() bool {
	return r.size == len(r.buf)
}

func (r *Ring[T]) Oldest() (T, bool) {
	var zero T
	if r.size == 0 {
		return zero, false
	}

	return r.buf[r.head], true
}

func (r *Ring[T]) Newest() (T, bool) {
	var zero T
	if r.size == 0 {
		return zero, false
	}

	return r.buf[(r.head+r.size-1)%len(r.buf)], true
}
