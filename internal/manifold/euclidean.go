package manifold

import "github.com/go-gl/mathgl/mgl64"

type euclidean3 struct{}

func (euclidean3) Dim() int { return 3 }

func (euclidean3) Retract(p, v mgl64.Vec3) mgl64.Vec3 {
	return p.Add(v)
}

func (euclidean3) Local(p, q mgl64.Vec3) mgl64.Vec3 {
	return q.Sub(p)
}

// Euclidean3 is the flat R^3 manifold: retract(p,v) = p+v, local(p,q) = q-p.
var Euclidean3 Manifold[mgl64.Vec3, mgl64.Vec3] = euclidean3{}
