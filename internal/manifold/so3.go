package manifold

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// smallAngleEpsilon bounds where the quaternion exponential switches to its
// Taylor expansion to avoid dividing by a near-zero rotation angle.
const smallAngleEpsilon = 1e-8

type so3 struct{}

func (so3) Dim() int { return 3 }

// Retract applies the quaternion exponential of the scaled-axis tangent v
// and renormalizes: retract(q,v) = normalize(q * exp(v)).
func (so3) Retract(q mgl64.Quat, v mgl64.Vec3) mgl64.Quat {
	return q.Mul(expQuat(v)).Normalize()
}

// Local computes the scaled-axis tangent vector such that
// Retract(p, Local(p,q)) ~= q: local(p,q) = log(p^-1 * q).
func (so3) Local(p, q mgl64.Quat) mgl64.Vec3 {
	delta := p.Inverse().Mul(q)
	return logQuat(delta)
}

// SO3 is the 3D rotation group represented by unit quaternions; tangent
// vectors are scaled rotation axes (angular velocity * time, or similar).
var SO3 Manifold[mgl64.Quat, mgl64.Vec3] = so3{}

// expQuat computes the quaternion exponential of a scaled axis v: the
// rotation by angle |v| about axis v/|v|. At |v| -> 0 the coefficient
// sin(theta/2)/theta is replaced by its Taylor expansion (-> 1/2) so the
// mapping stays well-defined without dividing by zero.
func expQuat(v mgl64.Vec3) mgl64.Quat {
	theta := v.Len()
	var s float64
	if theta < smallAngleEpsilon {
		s = 0.5 - theta*theta/48.0
	} else {
		s = math.Sin(theta/2) / theta
	}
	c := math.Cos(theta / 2)
	return mgl64.Quat{W: c, V: v.Mul(s)}
}

// logQuat computes the scaled-axis tangent vector of a unit quaternion:
// the inverse of expQuat, robust near the identity.
func logQuat(q mgl64.Quat) mgl64.Vec3 {
	sinHalfTheta := q.V.Len()
	if sinHalfTheta < smallAngleEpsilon {
		// theta/2 ~= sin(theta/2) near the identity, so axis*theta ~= 2*V.
		return q.V.Mul(2)
	}
	theta := 2 * math.Atan2(sinHalfTheta, q.W)
	axis := q.V.Mul(1.0 / sinHalfTheta)
	return axis.Mul(theta)
}
