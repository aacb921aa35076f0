package rbxdom

import "strconv"

type ValueVector2 struct {
	X, Y float32
}

func (ValueVector2) Type() Type { return TypeVector2 }
func (v ValueVector2) String() string {
	return joinstr(
		strconv.FormatFloat(float64(v.X), 'g', -1, 32), ", ",
		strconv.FormatFloat(float64(v.Y), 'g', -1, 32),
	)
}
func (v ValueVector2) Copy() Value { return v }

type ValueVector2int16 struct {
	X, Y int16
}

func (ValueVector2int16) Type() Type { return TypeVector2int16 }
func (v ValueVector2int16) String() string {
	return joinstr(
		strconv.FormatInt(int64(v.X), 10), ", ",
		strconv.FormatInt(int64(v.Y), 10),
	)
}
func (v ValueVector2int16) Copy() Value { return v }

type ValueVector3 struct {
	X, Y, Z float32
}

func (ValueVector3) Type() Type { return TypeVector3 }
func (v ValueVector3) String() string {
	return joinstr(
		strconv.FormatFloat(float64(v.X), 'g', -1, 32), ", ",
		strconv.FormatFloat(float64(v.Y), 'g', -1, 32), ", ",
		strconv.FormatFloat(float64(v.Z), 'g', -1, 32),
	)
}
func (v ValueVector3) Copy() Value { return v }

type ValueVector3int16 struct {
	X, Y, Z int16
}

func (ValueVector3int16) Type() Type { return TypeVector3int16 }
func (v ValueVector3int16) String() string {
	return joinstr(
		strconv.FormatInt(int64(v.X), 10), ", ",
		strconv.FormatInt(int64(v.Y), 10), ", ",
		strconv.FormatInt(int64(v.Z), 10),
	)
}
func (v ValueVector3int16) Copy() Value { return v }

// ValueColor3 is a color with components in [0, 1].
type ValueColor3 struct {
	R, G, B float32
}

func (ValueColor3) Type() Type { return TypeColor3 }
func (v ValueColor3) String() string {
	return joinstr(
		strconv.FormatFloat(float64(v.R), 'g', -1, 32), ", ",
		strconv.FormatFloat(float64(v.G), 'g', -1, 32), ", ",
		strconv.FormatFloat(float64(v.B), 'g', -1, 32),
	)
}
func (v ValueColor3) Copy() Value { return v }

// ValueColor3uint8 is a color with byte components, distinct from
// ValueColor3 even when numerically equivalent.
type ValueColor3uint8 struct {
	R, G, B byte
}

func (ValueColor3uint8) Type() Type { return TypeColor3uint8 }
func (v ValueColor3uint8) String() string {
	return joinstr(
		strconv.FormatUint(uint64(v.R), 10), ", ",
		strconv.FormatUint(uint64(v.G), 10), ", ",
		strconv.FormatUint(uint64(v.B), 10),
	)
}
func (v ValueColor3uint8) Copy() Value { return v }

type ValueUDim struct {
	Scale  float32
	Offset int32
}

func (ValueUDim) Type() Type { return TypeUDim }
func (v ValueUDim) String() string {
	return joinstr(
		strconv.FormatFloat(float64(v.Scale), 'g', -1, 32), ", ",
		strconv.FormatInt(int64(v.Offset), 10),
	)
}
func (v ValueUDim) Copy() Value { return v }

type ValueUDim2 struct {
	X, Y ValueUDim
}

func (ValueUDim2) Type() Type { return TypeUDim2 }
func (v ValueUDim2) String() string {
	return joinstr("{", v.X.String(), "}, {", v.Y.String(), "}")
}
func (v ValueUDim2) Copy() Value { return v }

// ValueCFrame is a rigid (or not necessarily rigid — no normalization is
// performed) 3D transform: a position and a row-major 3x3 rotation matrix.
// A CFrame with a non-orthonormal Rotation is a legal value and round-trips
// unchanged.
type ValueCFrame struct {
	Position ValueVector3
	Rotation [9]float32
}

func newValueCFrame() Value {
	return ValueCFrame{
		Rotation: [9]float32{1, 0, 0, 0, 1, 0, 0, 0, 1},
	}
}

func (ValueCFrame) Type() Type { return TypeCFrame }
func (v ValueCFrame) String() string {
	s := make([]string, 12)
	s[0] = strconv.FormatFloat(float64(v.Position.X), 'g', -1, 32)
	s[1] = strconv.FormatFloat(float64(v.Position.Y), 'g', -1, 32)
	s[2] = strconv.FormatFloat(float64(v.Position.Z), 'g', -1, 32)
	for i, f := range v.Rotation {
		s[i+3] = strconv.FormatFloat(float64(f), 'g', -1, 32)
	}
	out := s[0]
	for _, p := range s[1:] {
		out = joinstr(out, ", ", p)
	}
	return out
}
func (v ValueCFrame) Copy() Value { return v }
