package gwave

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
)

// PerspectiveMat4 returns an OpenGL style projection matrix mapping the view
// frustum to clip space. fovy is the vertical field of view in radians.
func PerspectiveMat4(fovy, aspect, near, far float32) ms3.Mat4 {
	f := 1 / math32.Tan(fovy/2)
	nf := 1 / (near - far)
	return ms3.NewMat4([]float32{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) * nf, 2 * far * near * nf,
		0, 0, -1, 0,
	})
}

// LookAtMat4 returns a view matrix for a camera at eye looking at target.
func LookAtMat4(eye, target, up ms3.Vec) ms3.Mat4 {
	f := ms3.Unit(ms3.Sub(target, eye))
	s := ms3.Unit(ms3.Cross(f, up))
	u := ms3.Cross(s, f)
	return ms3.NewMat4([]float32{
		s.X, s.Y, s.Z, -ms3.Dot(s, eye),
		u.X, u.Y, u.Z, -ms3.Dot(u, eye),
		-f.X, -f.Y, -f.Z, ms3.Dot(f, eye),
		0, 0, 0, 1,
	})
}

// mulHomogeneous transforms the point p (w=1) and returns the xyz and w
// components of the result.
func mulHomogeneous(m ms3.Mat4, p ms3.Vec) (ms3.Vec, float32) {
	a := m.Array()
	return m.MulPosition(p), a[12]*p.X + a[13]*p.Y + a[14]*p.Z + a[15]
}
