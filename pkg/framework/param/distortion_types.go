package param

// Distortion type constants, in parameter index order
const (
	DistortionTypeNone = iota
	DistortionTypeTanh
	DistortionTypeSigmoid
)

// DistortionTypeNames provides display names for distortion types
var DistortionTypeNames = []string{
	"none",
	"tanh(kx)/tanh(k)",
	"sigmoid",
}

// DistortionTypeOptions lists the choices with the aliases accepted by the
// parser.
var DistortionTypeOptions = []ChoiceOption{
	{Value: DistortionTypeNone, Name: DistortionTypeNames[DistortionTypeNone], Aliases: []string{"off", "clean", "bypass"}},
	{Value: DistortionTypeTanh, Name: DistortionTypeNames[DistortionTypeTanh], Aliases: []string{"tanh", "soft", "softclip"}},
	{Value: DistortionTypeSigmoid, Name: DistortionTypeNames[DistortionTypeSigmoid], Aliases: []string{"logistic", "sig"}},
}

// DistortionTypeParameter creates the distortion type choice
func DistortionTypeParameter(id uint32, name string) *Builder {
	return Choice(id, name, DistortionTypeOptions)
}
