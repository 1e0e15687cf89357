package training

import "math"

const npWindow = 30

// NormalizedPower computes normalized power from a 1 Hz power stream: the
// fourth root of the mean fourth power of the 30 s rolling average. Streams
// shorter than the window fall back to the plain average.
func NormalizedPower(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	if len(samples) < npWindow {
		return average(samples)
	}

	sum := 0.0
	for _, p := range samples[:npWindow] {
		sum += p
	}
	total := 0.0
	count := 0
	for i := npWindow - 1; i < len(samples); i++ {
		if i >= npWindow {
			sum += samples[i] - samples[i-npWindow]
		}
		total += math.Pow(sum/npWindow, 4)
		count++
	}
	return math.Pow(total/float64(count), 0.25)
}

func average(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range samples {
		sum += p
	}
	return sum / float64(len(samples))
}
