package viseme

import "bonedriver/internal/blendshape"

// Names holds the viseme blendshape names used by CC3 and CC4 characters,
// including the V_ prefixed CC4 extended set.
var Names = map[string]struct{}{
	"Open": {}, "V_Open": {},
	"Explosive": {}, "V_Explosive": {},
	"Dental_Lip": {}, "V_Dental_Lip": {},
	"Tight-O": {}, "V_Tight_O": {},
	"Tight": {}, "V_Tight": {},
	"Wide": {}, "V_Wide": {},
	"Affricate": {}, "V_Affricate": {},
	"Lip_Open": {}, "V_Lip_Open": {},
	"Tongue_up": {}, "V_Tongue_up": {},
	"Tongue_Raise": {}, "V_Tongue_Raise": {},
	"Tongue_Out": {}, "V_Tongue_Out": {},
	"Tongue_Narrow": {}, "V_Tongue_Narrow": {},
	"Tongue_Lower": {}, "V_Tongue_Lower": {},
	"Tongue_Curl-U": {}, "V_Tongue_Curl_U": {},
	"Tongue_Curl-D": {}, "V_Tongue_Curl_D": {},
	"EE": {}, "Er": {}, "Ih": {}, "IH": {}, "Ah": {}, "Oh": {},
	"W_OO": {}, "S_Z": {}, "Ch_J": {}, "F_V": {}, "Th": {}, "TH": {},
	"T_L_D_N": {}, "B_M_P": {}, "K_G_H_NG": {}, "AE": {}, "R": {},
}

// IsViseme reports whether name is a viseme shape. Matching is case-sensitive.
func IsViseme(name string) bool {
	_, ok := Names[name]
	return ok
}

// Indices returns the viseme slots of m in slot order.
func Indices(m blendshape.Mesh) []int {
	var out []int
	for i := 0; i < m.BlendShapeCount(); i++ {
		if IsViseme(m.BlendShapeName(i)) {
			out = append(out, i)
		}
	}
	return out
}
