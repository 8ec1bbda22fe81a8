package gpu

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/kickthemoon/moo/internal/state"
	"github.com/pkg/errors"
)

// particleStride is the byte size of one Particle record: two 16-byte
// vec4<f32> slots, matching WGSL's std430 layout for the struct declared
// in bindingsHeader.
const particleStride = 32

// EncodeParticles packs a PhaseSpace's translational DOFs into the
// flat byte layout the GPU particle buffer expects: N * particleStride
// bytes, little-endian, (pos.xyz, mass, vel.xyz, pad) per particle.
// PhaseSpace holds mass per the convention detected by MassStride; rigid
// DOFs and rotational state have no GPU counterpart and are not encoded.
func EncodeParticles(s *state.PhaseSpace) ([]byte, error) {
	n := s.NumParticles()
	buf := make([]byte, n*particleStride)
	for i := 0; i < n; i++ {
		p := Particle{
			PosX: float32(s.Q[3*i]),
			PosY: float32(s.Q[3*i+1]),
			PosZ: float32(s.Q[3*i+2]),
			Mass: float32(s.MassOf(3 * i)),
			VelX: float32(s.V[3*i]),
			VelY: float32(s.V[3*i+1]),
			VelZ: float32(s.V[3*i+2]),
		}
		off := i * particleStride
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(p.PosX))
		binary.LittleEndian.PutUint32(buf[off+4:], math.Float32bits(p.PosY))
		binary.LittleEndian.PutUint32(buf[off+8:], math.Float32bits(p.PosZ))
		binary.LittleEndian.PutUint32(buf[off+12:], math.Float32bits(p.Mass))
		binary.LittleEndian.PutUint32(buf[off+16:], math.Float32bits(p.VelX))
		binary.LittleEndian.PutUint32(buf[off+20:], math.Float32bits(p.VelY))
		binary.LittleEndian.PutUint32(buf[off+24:], math.Float32bits(p.VelZ))
		binary.LittleEndian.PutUint32(buf[off+28:], math.Float32bits(p.Pad))
	}
	return buf, nil
}

// DecodeParticles unpacks a GPU particle buffer back into a PhaseSpace's
// Q and V slices, overwriting the translational DOFs in place. It
// returns an error if buf's length doesn't match s's particle count.
func DecodeParticles(buf []byte, s *state.PhaseSpace) error {
	n := s.NumParticles()
	if len(buf) != n*particleStride {
		return errors.Errorf("gpu: particle buffer size %d does not match %d particles (want %d bytes)",
			len(buf), n, n*particleStride)
	}
	for i := 0; i < n; i++ {
		off := i * particleStride
		s.Q[3*i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])))
		s.Q[3*i+1] = float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[off+4:])))
		s.Q[3*i+2] = float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[off+8:])))
		s.V[3*i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[off+16:])))
		s.V[3*i+1] = float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[off+20:])))
		s.V[3*i+2] = float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[off+24:])))
	}
	return nil
}

// EncodeSimParams packs SimParams into its std140 uniform-buffer byte
// layout, binding 0.
func EncodeSimParams(p SimParams) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, p); err != nil {
		return nil, errors.Wrap(err, "gpu: encode sim params")
	}
	return buf.Bytes(), nil
}

// EncodeBitonicStages packs a bitonic-sort stage sequence into a single
// uniform buffer, one record every BitonicStageStride bytes so each
// dispatch can select its stage via a dynamic offset.
func EncodeBitonicStages(stages []BitonicStage) []byte {
	buf := make([]byte, len(stages)*BitonicStageStride)
	for i, st := range stages {
		off := i * BitonicStageStride
		binary.LittleEndian.PutUint32(buf[off:], st.BlockHeight)
		binary.LittleEndian.PutUint32(buf[off+4:], st.BlockWidth)
	}
	return buf
}
