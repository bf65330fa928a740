package shm

import (
	"encoding/binary"
	"sync/atomic"
	"unsafe"
)

// Words views b as 32-bit words. b must be 4-byte aligned, which holds for
// page-aligned mappings and for Go-allocated []uint32 backing arrays. A
// trailing partial word is not included.
func Words(b []byte) []uint32 {
	if len(b) < 4 {
		return nil
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(&b[0])), len(b)/4)
}

// LoadWords copies words into dst with one atomic load per word. Each word
// is read untorn and in order; the copy as a whole is not a snapshot.
func LoadWords(dst []byte, words []uint32) {
	for i := range words {
		binary.NativeEndian.PutUint32(dst[i*4:], atomic.LoadUint32(&words[i]))
	}
}

// StoreWords copies src into words with one atomic store per word.
func StoreWords(words []uint32, src []byte) {
	for i := range words {
		atomic.StoreUint32(&words[i], binary.NativeEndian.Uint32(src[i*4:]))
	}
}

// StoreWord atomically stores v into words[i].
func StoreWord(words []uint32, i int, v uint32) {
	atomic.StoreUint32(&words[i], v)
}

// LoadWord atomically loads words[i].
func LoadWord(words []uint32, i int) uint32 {
	return atomic.LoadUint32(&words[i])
}

// ZeroWords atomically stores zero into every word.
func ZeroWords(words []uint32) {
	for i := range words {
		atomic.StoreUint32(&words[i], 0)
	}
}
