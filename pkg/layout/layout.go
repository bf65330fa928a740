package layout

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Widths of the fixed text and context buffers, in code units and bytes.
const (
	NameLen        = 256
	IdentityLen    = 256
	DescriptionLen = 2048
	ContextLen     = 256
)

// Version is the protocol version written by an owner. Zero means unowned.
const Version uint32 = 2

// PositionSize is the encoded size of a Position: nine float32 values.
const PositionSize = 9 * 4

// Field offsets within the segment. All offsets are multiples of 4.
const (
	OffsetVersion     = 0
	OffsetTick        = OffsetVersion + 4
	OffsetAvatar      = OffsetTick + 4
	OffsetName        = OffsetAvatar + PositionSize
	OffsetCamera      = OffsetName + NameLen*2
	OffsetIdentity    = OffsetCamera + PositionSize
	OffsetContextLen  = OffsetIdentity + IdentityLen*2
	OffsetContext     = OffsetContextLen + 4
	OffsetDescription = OffsetContext + ContextLen

	// Size is the total size of the segment in bytes.
	Size = OffsetDescription + DescriptionLen*2
)

// Words is the segment size in 32-bit words.
const Words = Size / 4

// ErrShortBuffer is returned by Unmarshal when the source holds fewer than
// Size bytes.
var ErrShortBuffer = errors.New("layout: short buffer")

var byteOrder = binary.NativeEndian

// Position is a point and orientation in a left-handed coordinate system:
// X towards the right, Y up and Z towards the front. One unit is treated as
// one meter by the host's sound engine.
//
// Front and Top are expected to be perpendicular unit vectors. They are not
// validated.
type Position struct {
	Position [3]float32
	Front    [3]float32
	Top      [3]float32
}

// DefaultPosition returns the origin, facing +Z with +Y up.
func DefaultPosition() Position {
	return Position{
		Front: [3]float32{0, 0, 1},
		Top:   [3]float32{0, 1, 0},
	}
}

// LinkedMemory mirrors the host's struct field for field.
type LinkedMemory struct {
	Version     uint32
	Tick        uint32
	Avatar      Position
	Name        [NameLen]uint16
	Camera      Position
	Identity    [IdentityLen]uint16
	ContextLen  uint32
	Context     [ContextLen]byte
	Description [DescriptionLen]uint16
}

// Reset zeroes every field.
func (m *LinkedMemory) Reset() {
	*m = LinkedMemory{}
}

// SetName encodes name into the name buffer, truncating silently.
func (m *LinkedMemory) SetName(name string) {
	EncodeWide(m.Name[:], name)
}

// SetIdentity encodes identity into the identity buffer, truncating silently.
func (m *LinkedMemory) SetIdentity(identity string) {
	EncodeWide(m.Identity[:], identity)
}

// SetDescription encodes description into the description buffer, truncating
// silently.
func (m *LinkedMemory) SetDescription(description string) {
	EncodeWide(m.Description[:], description)
}

// NameString decodes the name buffer.
func (m *LinkedMemory) NameString() string {
	return DecodeWide(m.Name[:])
}

// IdentityString decodes the identity buffer.
func (m *LinkedMemory) IdentityString() string {
	return DecodeWide(m.Identity[:])
}

// DescriptionString decodes the description buffer.
func (m *LinkedMemory) DescriptionString() string {
	return DecodeWide(m.Description[:])
}

// SetContext copies at most ContextLen bytes of ctx and records the copied
// length. Bytes past the new length keep their previous value.
func (m *LinkedMemory) SetContext(ctx []byte) {
	n := copy(m.Context[:], ctx)
	m.ContextLen = uint32(n)
}

// ContextBytes returns the context bytes selected by the length field. A
// length written by a foreign process larger than the buffer is clamped.
func (m *LinkedMemory) ContextBytes() []byte {
	n := min(m.ContextLen, ContextLen)
	return m.Context[:n]
}

// Marshal encodes m into dst, which must hold at least Size bytes.
func (m *LinkedMemory) Marshal(dst []byte) {
	if len(dst) < Size {
		panic(fmt.Sprintf("layout: Marshal into %d bytes, need %d", len(dst), Size))
	}
	e := encoder{buf: dst}
	e.uint32(m.Version)
	e.uint32(m.Tick)
	e.position(&m.Avatar)
	e.units(m.Name[:])
	e.position(&m.Camera)
	e.units(m.Identity[:])
	e.uint32(m.ContextLen)
	e.bytes(m.Context[:])
	e.units(m.Description[:])
}

// Unmarshal decodes the first Size bytes of src into m.
func (m *LinkedMemory) Unmarshal(src []byte) error {
	if len(src) < Size {
		return fmt.Errorf("%w: have %d bytes, need %d", ErrShortBuffer, len(src), Size)
	}
	d := decoder{buf: src}
	m.Version = d.uint32()
	m.Tick = d.uint32()
	d.position(&m.Avatar)
	d.units(m.Name[:])
	d.position(&m.Camera)
	d.units(m.Identity[:])
	m.ContextLen = d.uint32()
	d.bytes(m.Context[:])
	d.units(m.Description[:])
	return nil
}

// encoder writes fields sequentially into a buffer already known to be large
// enough.
type encoder struct {
	buf []byte
	pos int
}

func (e *encoder) uint32(v uint32) {
	byteOrder.PutUint32(e.buf[e.pos:], v)
	e.pos += 4
}

func (e *encoder) float32(v float32) {
	e.uint32(math.Float32bits(v))
}

func (e *encoder) vec(v *[3]float32) {
	for _, f := range v {
		e.float32(f)
	}
}

func (e *encoder) position(p *Position) {
	e.vec(&p.Position)
	e.vec(&p.Front)
	e.vec(&p.Top)
}

func (e *encoder) units(u []uint16) {
	for _, c := range u {
		byteOrder.PutUint16(e.buf[e.pos:], c)
		e.pos += 2
	}
}

func (e *encoder) bytes(b []byte) {
	e.pos += copy(e.buf[e.pos:], b)
}

type decoder struct {
	buf []byte
	pos int
}

func (d *decoder) uint32() uint32 {
	v := byteOrder.Uint32(d.buf[d.pos:])
	d.pos += 4
	return v
}

func (d *decoder) float32() float32 {
	return math.Float32frombits(d.uint32())
}

func (d *decoder) vec(v *[3]float32) {
	for i := range v {
		v[i] = d.float32()
	}
}

func (d *decoder) position(p *Position) {
	d.vec(&p.Position)
	d.vec(&p.Front)
	d.vec(&p.Top)
}

func (d *decoder) units(u []uint16) {
	for i := range u {
		u[i] = byteOrder.Uint16(d.buf[d.pos:])
		d.pos += 2
	}
}

func (d *decoder) bytes(b []byte) {
	d.pos += copy(b, d.buf[d.pos:d.pos+len(b)])
}
