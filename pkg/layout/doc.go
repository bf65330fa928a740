// Package layout defines the binary layout of the Mumble Link shared memory
// segment.
//
// The layout is owned by the voice-chat host, not by this module: field order
// and widths are fixed by the host's C struct and must match byte for byte on
// every platform. Text fields are UTF-16 code units regardless of the width of
// the platform's native wchar_t.
//
// LinkedMemory is never aliased onto mapped memory. It is converted to and
// from a raw byte buffer by Marshal and Unmarshal, which spell out every
// offset:
//
//	var m layout.LinkedMemory
//	m.SetName("Example")
//	m.SetDescription("Example game.")
//	m.Version = layout.Version
//	buf := make([]byte, layout.Size)
//	m.Marshal(buf)
//
// Integers and floats use the host byte order, since the host process reads
// the segment as a native struct.
package layout
