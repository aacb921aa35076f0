package rbxdom

import "strconv"

// ValuePhysicalProperties is either a custom set of physical material
// properties, or the "use default" sentinel (CustomPhysics == false, in
// which case the remaining fields are meaningless).
type ValuePhysicalProperties struct {
	CustomPhysics    bool
	Density          float32
	Friction         float32
	Elasticity       float32
	FrictionWeight   float32
	ElasticityWeight float32
}

func (ValuePhysicalProperties) Type() Type { return TypePhysicalProperties }
func (v ValuePhysicalProperties) String() string {
	if !v.CustomPhysics {
		return "default"
	}
	return joinstr(
		strconv.FormatFloat(float64(v.Density), 'g', -1, 32), ", ",
		strconv.FormatFloat(float64(v.Friction), 'g', -1, 32), ", ",
		strconv.FormatFloat(float64(v.Elasticity), 'g', -1, 32), ", ",
		strconv.FormatFloat(float64(v.FrictionWeight), 'g', -1, 32), ", ",
		strconv.FormatFloat(float64(v.ElasticityWeight), 'g', -1, 32),
	)
}
func (v ValuePhysicalProperties) Copy() Value { return v }

// ValueRay is an origin and direction, neither of which is normalized by
// this package.
type ValueRay struct {
	Origin, Direction ValueVector3
}

func (ValueRay) Type() Type { return TypeRay }
func (v ValueRay) String() string {
	return joinstr("{", v.Origin.String(), "}, {", v.Direction.String(), "}")
}
func (v ValueRay) Copy() Value { return v }

// ValueFaces is a set of cube faces, packed as a 6-bit field on the wire in
// the order Right, Top, Back, Left, Bottom, Front.
type ValueFaces struct {
	Right, Top, Back, Left, Bottom, Front bool
}

func (ValueFaces) Type() Type { return TypeFaces }
func (v ValueFaces) String() string {
	names := []struct {
		set  bool
		name string
	}{
		{v.Front, "Front"}, {v.Bottom, "Bottom"}, {v.Left, "Left"},
		{v.Back, "Back"}, {v.Top, "Top"}, {v.Right, "Right"},
	}
	var out string
	for _, n := range names {
		if !n.set {
			continue
		}
		if out == "" {
			out = n.name
		} else {
			out = joinstr(out, ", ", n.name)
		}
	}
	return out
}
func (v ValueFaces) Copy() Value { return v }

// ValueAxes is a set of coordinate axes, packed as a 3-bit field on the
// wire in the order X, Y, Z.
type ValueAxes struct {
	X, Y, Z bool
}

func (ValueAxes) Type() Type { return TypeAxes }
func (v ValueAxes) String() string {
	var out string
	for _, n := range []struct {
		set  bool
		name string
	}{{v.X, "X"}, {v.Y, "Y"}, {v.Z, "Z"}} {
		if !n.set {
			continue
		}
		if out == "" {
			out = n.name
		} else {
			out = joinstr(out, ", ", n.name)
		}
	}
	return out
}
func (v ValueAxes) Copy() Value { return v }

// ValueNumberSequenceKeypoint is one keypoint of a ValueNumberSequence.
type ValueNumberSequenceKeypoint struct {
	Time, Value, Envelope float32
}

func (k ValueNumberSequenceKeypoint) String() string {
	return joinstr(
		strconv.FormatFloat(float64(k.Time), 'g', -1, 32), " ",
		strconv.FormatFloat(float64(k.Value), 'g', -1, 32), " ",
		strconv.FormatFloat(float64(k.Envelope), 'g', -1, 32),
	)
}

// ValueNumberSequence is a piecewise-linear curve over keypoints ordered by
// Time.
type ValueNumberSequence []ValueNumberSequenceKeypoint

func (ValueNumberSequence) Type() Type { return TypeNumberSequence }
func (v ValueNumberSequence) String() string {
	var out string
	for i, k := range v {
		if i == 0 {
			out = k.String()
		} else {
			out = joinstr(out, " ", k.String())
		}
	}
	return out
}
func (v ValueNumberSequence) Copy() Value {
	c := make(ValueNumberSequence, len(v))
	copy(c, v)
	return c
}

// ValueColorSequenceKeypoint is one keypoint of a ValueColorSequence.
type ValueColorSequenceKeypoint struct {
	Time     float32
	Value    ValueColor3
	Envelope float32
}

func (k ValueColorSequenceKeypoint) String() string {
	return joinstr(
		strconv.FormatFloat(float64(k.Time), 'g', -1, 32), " ",
		k.Value.String(), " ",
		strconv.FormatFloat(float64(k.Envelope), 'g', -1, 32),
	)
}

// ValueColorSequence is a piecewise-linear color gradient over keypoints
// ordered by Time.
type ValueColorSequence []ValueColorSequenceKeypoint

func (ValueColorSequence) Type() Type { return TypeColorSequence }
func (v ValueColorSequence) String() string {
	var out string
	for i, k := range v {
		if i == 0 {
			out = k.String()
		} else {
			out = joinstr(out, " ", k.String())
		}
	}
	return out
}
func (v ValueColorSequence) Copy() Value {
	c := make(ValueColorSequence, len(v))
	copy(c, v)
	return c
}

// ValueNumberRange is an inclusive [Min, Max] range.
type ValueNumberRange struct {
	Min, Max float32
}

func (ValueNumberRange) Type() Type { return TypeNumberRange }
func (v ValueNumberRange) String() string {
	return joinstr(
		strconv.FormatFloat(float64(v.Min), 'g', -1, 32), ", ",
		strconv.FormatFloat(float64(v.Max), 'g', -1, 32),
	)
}
func (v ValueNumberRange) Copy() Value { return v }

// ValueRect2D is an axis-aligned rectangle given by two corners.
type ValueRect2D struct {
	Min, Max ValueVector2
}

func (ValueRect2D) Type() Type { return TypeRect2D }
func (v ValueRect2D) String() string {
	return joinstr("{", v.Min.String(), "}, {", v.Max.String(), "}")
}
func (v ValueRect2D) Copy() Value { return v }
