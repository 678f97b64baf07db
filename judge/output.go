package judge

import (
	"bytes"
	"sync"
)

// outputBuffer keeps at most limit+1 bytes of a program output and discards
// the rest, so that Len() > limit reports an exceeded limit
type outputBuffer struct {
	buf      bytes.Buffer
	limit    int64
	exceeded func()
	once     sync.Once
}

func newOutputBuffer(limit int64, exceeded func()) *outputBuffer {
	return &outputBuffer{limit: limit, exceeded: exceeded}
}

// Write never fails so that the writer side is not blocked or signalled
func (b *outputBuffer) Write(p []byte) (int, error) {
	if remain := b.limit + 1 - int64(b.buf.Len()); remain > 0 {
		b.buf.Write(p[:min(int64(len(p)), remain)])
	}
	if b.Exceeded() && b.exceeded != nil {
		b.once.Do(b.exceeded)
	}
	return len(p), nil
}

// Exceeded reports whether more than limit bytes were written
func (b *outputBuffer) Exceeded() bool {
	return int64(b.buf.Len()) > b.limit
}

// Bytes returns the kept output, at most limit bytes
func (b *outputBuffer) Bytes() []byte {
	return b.buf.Bytes()[:min(int64(b.buf.Len()), b.limit)]
}
