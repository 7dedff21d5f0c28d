package glrender

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/soypat/geometry/ms3"
)

const (
	stlHeaderSize   = 80
	stlTriangleSize = 50
)

// WriteBinarySTL writes triangles in binary STL format: an 80 byte header, a
// little endian triangle count and 50 bytes per triangle.
func WriteBinarySTL(w io.Writer, triangles []ms3.Triangle) (int, error) {
	var header [stlHeaderSize + 4]byte
	copy(header[:], "gwave binary STL")
	binary.LittleEndian.PutUint32(header[stlHeaderSize:], uint32(len(triangles)))
	n, err := w.Write(header[:])
	if err != nil {
		return n, err
	}
	var buf [stlTriangleSize]byte
	for _, t := range triangles {
		normal := triangleNormal(t)
		putVec(buf[0:], normal)
		putVec(buf[12:], t[0])
		putVec(buf[24:], t[1])
		putVec(buf[36:], t[2])
		// Attribute byte count is left zero.
		buf[48], buf[49] = 0, 0
		ngot, err := w.Write(buf[:])
		n += ngot
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

func putVec(b []byte, v ms3.Vec) {
	binary.LittleEndian.PutUint32(b[0:], math.Float32bits(v.X))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(v.Y))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(v.Z))
}

// triangleNormal returns the unit normal of t or the zero vector for
// degenerate triangles.
func triangleNormal(t ms3.Triangle) ms3.Vec {
	n := t.Normal()
	if n == (ms3.Vec{}) {
		return n
	}
	return ms3.Unit(n)
}
