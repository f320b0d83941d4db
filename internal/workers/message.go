package workers

import "errors"

// ErrDetached is returned when a buffer that was already transferred is sent
var ErrDetached = errors.New("buffer already transferred")

// Buffer is a byte slice whose ownership moves on transfer. After Transfer
// the sender's Buffer is empty and cannot be sent again.
type Buffer struct {
	data     []byte
	detached bool
}

// NewBuffer takes ownership of data. The caller must not use data afterwards.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{data: data}
}

// Transfer detaches the bytes from b and returns them
func (b *Buffer) Transfer() ([]byte, error) {
	if b == nil || b.detached {
		return nil, ErrDetached
	}
	data := b.data
	b.data = nil
	b.detached = true
	return data, nil
}

// Len returns the number of bytes still owned by b
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.data)
}

// Detached reports whether b has been transferred
func (b *Buffer) Detached() bool {
	return b == nil || b.detached
}

// Reply is a worker's answer to one request: a buffer or an error message
type Reply struct {
	Data  []byte
	Error string
}

// Failed reports whether the reply carries an error
func (r Reply) Failed() bool {
	return r.Error != ""
}

type request struct {
	data  []byte
	reply chan Reply
}
