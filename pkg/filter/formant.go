package filter

// FormantSpec gives one resonator's center frequency and relative
// amplitude for a vowel.
type FormantSpec struct {
	FreqHz float64
	Amp    float64
}

// vowelFormants are the first three formants (F1/F2/F3) for five
// reference vowels, taken from classic vocal-tract acoustic
// measurements.
var vowelFormants = map[string][3]FormantSpec{
	"a": {{FreqHz: 730, Amp: 1.0}, {FreqHz: 1090, Amp: 0.6}, {FreqHz: 2440, Amp: 0.3}},
	"e": {{FreqHz: 530, Amp: 1.0}, {FreqHz: 1840, Amp: 0.5}, {FreqHz: 2480, Amp: 0.25}},
	"i": {{FreqHz: 270, Amp: 1.0}, {FreqHz: 2290, Amp: 0.4}, {FreqHz: 3010, Amp: 0.2}},
	"o": {{FreqHz: 570, Amp: 1.0}, {FreqHz: 840, Amp: 0.55}, {FreqHz: 2410, Amp: 0.25}},
	"u": {{FreqHz: 300, Amp: 1.0}, {FreqHz: 870, Amp: 0.45}, {FreqHz: 2240, Amp: 0.2}},
}

// formantQ is the shared resonance quality used by every formant
// bandpass.
const formantQ = 5.0

// FormantBank models a vowel as three parallel bandpass resonators
// summed together, matching the way vocal-tract formants combine
// acoustically.
type FormantBank struct {
	resonators [3]*Biquad
	amps       [3]float64
}

// NewFormantBank builds a bank for the named vowel ("a", "e", "i", "o",
// "u"); unknown names fall back to "a".
func NewFormantBank(vowel string, sampleRate float64) *FormantBank {
	specs, ok := vowelFormants[vowel]
	if !ok {
		specs = vowelFormants["a"]
	}
	fb := &FormantBank{}
	for i, s := range specs {
		fb.resonators[i] = NewBiquad(BandPass, s.FreqHz, formantQ, 0, sampleRate)
		fb.amps[i] = s.Amp
	}
	return fb
}

// Process runs x through all three resonators and sums the weighted
// output.
func (fb *FormantBank) Process(x float64) float64 {
	var out float64
	for i, r := range fb.resonators {
		out += r.Process(x) * fb.amps[i]
	}
	return out
}

// ProcessBuffer filters buf in place.
func (fb *FormantBank) ProcessBuffer(buf []float64) {
	for i, x := range buf {
		buf[i] = fb.Process(x)
	}
}

// Reset clears all three resonator states.
func (fb *FormantBank) Reset() {
	for _, r := range fb.resonators {
		r.Reset()
	}
}

// VowelNames lists the vowels with defined formant tables, in a stable
// order.
func VowelNames() []string {
	return []string{"a", "e", "i", "o", "u"}
}
