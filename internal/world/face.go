package world

// Face names one of the six axis-aligned sides of a voxel.
type Face uint8

const (
	FaceNone   Face = iota
	FaceEast        // +X
	FaceWest        // -X
	FaceTop         // +Y
	FaceBottom      // -Y
	FaceSouth       // +Z
	FaceNorth       // -Z
)

// Faces lists the six real faces in a fixed order.
var Faces = [6]Face{FaceEast, FaceWest, FaceTop, FaceBottom, FaceSouth, FaceNorth}

var faceOffsets = [...][3]int{
	FaceNone:   {0, 0, 0},
	FaceEast:   {1, 0, 0},
	FaceWest:   {-1, 0, 0},
	FaceTop:    {0, 1, 0},
	FaceBottom: {0, -1, 0},
	FaceSouth:  {0, 0, 1},
	FaceNorth:  {0, 0, -1},
}

var faceNames = [...]string{
	FaceNone:   "none",
	FaceEast:   "east",
	FaceWest:   "west",
	FaceTop:    "top",
	FaceBottom: "bottom",
	FaceSouth:  "south",
	FaceNorth:  "north",
}

// Offset returns the unit step pointing out of the face.
func (f Face) Offset() (dx, dy, dz int) {
	if int(f) >= len(faceOffsets) {
		return 0, 0, 0
	}
	o := faceOffsets[f]
	return o[0], o[1], o[2]
}

// Opposite returns the face on the other side of the voxel.
func (f Face) Opposite() Face {
	switch f {
	case FaceEast:
		return FaceWest
	case FaceWest:
		return FaceEast
	case FaceTop:
		return FaceBottom
	case FaceBottom:
		return FaceTop
	case FaceSouth:
		return FaceNorth
	case FaceNorth:
		return FaceSouth
	}
	return FaceNone
}

// FaceFor returns the face whose outward normal points along the given axis
// (0=X, 1=Y, 2=Z) in the direction of sign.
func FaceFor(axis, sign int) Face {
	if sign == 0 {
		return FaceNone
	}
	switch axis {
	case 0:
		if sign > 0 {
			return FaceEast
		}
		return FaceWest
	case 1:
		if sign > 0 {
			return FaceTop
		}
		return FaceBottom
	case 2:
		if sign > 0 {
			return FaceSouth
		}
		return FaceNorth
	}
	return FaceNone
}

func (f Face) String() string {
	if int(f) >= len(faceNames) {
		return "invalid"
	}
	return faceNames[f]
}
