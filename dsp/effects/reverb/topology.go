package reverb

// dattorroReferenceRate is the sample rate the published line lengths and
// tap offsets were tuned for.
const dattorroReferenceRate = 29761.0

// tapGain weights every output tap.
const tapGain = 0.6

// lineID names a tank line after its reference length.
type lineID int

const (
	line142 lineID = iota
	line379
	line107
	line277
	line672
	line908
	line4453
	line4217
	line3720
	line3163
	line1800
	line2656
	numLines
)

var referenceLengths = [numLines]int{142, 379, 107, 277, 672, 908, 4453, 4217, 3720, 3163, 1800, 2656}

// inputDiffusers run in this order; the first two use input diffusion 1.
var inputDiffusers = [4]lineID{line142, line107, line379, line277}

// decayLoop is one half of the figure-eight tank.
type decayLoop struct {
	allpass  lineID // modulated decay diffusion 1 stage
	delay    lineID // delay feeding the damping filter
	diffuser lineID // decay diffusion 2 stage
	long     lineID // closes the loop, read by the other half
}

var loops = [2]decayLoop{
	{allpass: line672, delay: line4453, diffuser: line1800, long: line3720},
	{allpass: line908, delay: line4217, diffuser: line2656, long: line3163},
}

type outputTap struct {
	line   lineID
	offset int
	sign   float64
}

const numTaps = 7

var leftTaps = [numTaps]outputTap{
	{line4217, 266, 1},
	{line4217, 2974, 1},
	{line2656, 1913, -1},
	{line3163, 1996, 1},
	{line4453, 1990, -1},
	{line1800, 187, -1},
	{line3720, 1066, -1},
}

var rightTaps = [numTaps]outputTap{
	{line4453, 353, 1},
	{line4453, 3627, 1},
	{line1800, 1228, -1},
	{line3720, 2673, 1},
	{line4217, 2111, -1},
	{line2656, 335, -1},
	{line3163, 121, -1},
}

// Modulation targets at MODULATION = 1: extent in samples and LFO rate in Hz.
const (
	modExtentP = 60.0
	modExtentQ = 40.0
	modRateP   = 1.25
	modRateQ   = 4.87
)
