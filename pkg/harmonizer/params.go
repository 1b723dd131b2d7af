package harmonizer

import (
	"fmt"

	"github.com/justyntemme/harmonicfx/pkg/dsp/distortion"
	"github.com/justyntemme/harmonicfx/pkg/framework/param"
)

// Parameter IDs
const (
	ParamGain uint32 = iota
	ParamBypass
	ParamDistortion
	ParamPan
)

// Snapshot is the control state for one block
type Snapshot struct {
	Gain       float32
	Bypass     bool
	Distortion distortion.Type
	Pan        float32
}

// DefaultSnapshot is the state of freshly created parameters
var DefaultSnapshot = Snapshot{Gain: 1, Distortion: distortion.None, Pan: 0.5}

// paramSet holds the parameters the audio thread reads, resolved once so
// that Process never touches the registry.
type paramSet struct {
	gain       *param.Parameter
	bypass     *param.Parameter
	distortion *param.Parameter
	pan        *param.Parameter
}

func registerParameters(r *param.Registry) (paramSet, error) {
	ps := paramSet{
		gain:       param.LevelParameter(ParamGain, "gain", 1).ShortName("Gain").Build(),
		bypass:     param.BypassParameter(ParamBypass, "bypass").ShortName("Bypass").Build(),
		distortion: param.DistortionTypeParameter(ParamDistortion, "distortion type").ShortName("distortion").Build(),
		pan:        param.PanParameter(ParamPan, "pan").ShortName("Pan").Build(),
	}
	if err := r.Add(ps.gain, ps.bypass, ps.distortion, ps.pan); err != nil {
		return paramSet{}, fmt.Errorf("register parameters: %w", err)
	}
	return ps, nil
}

func (ps *paramSet) snapshot() Snapshot {
	return Snapshot{
		Gain:       float32(ps.gain.GetPlainValue()),
		Bypass:     ps.bypass.GetBool(),
		Distortion: distortion.TypeFromIndex(ps.distortion.GetIndex()),
		Pan:        float32(ps.pan.GetPlainValue()),
	}
}
