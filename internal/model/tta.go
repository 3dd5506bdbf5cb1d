package model

import (
	"math/rand"

	"github.com/tomatoguard/diagnosis-api/internal/imageproc"
)

// TTA wraps classifier calls with an optional test-time-augmentation
// strategy: for n > 1 it averages the probability vectors of n transformed
// views with equal weight. The cutoff splits confident single-label results
// from low-confidence primary/secondary pairs.
type TTA struct {
	registry *Registry
	cutoff   float64
	rnd      *rand.Rand
}

// NewTTA returns a TTA controller drawing augmentation jitter from rnd.
func NewTTA(registry *Registry, cutoff float64, rnd *rand.Rand) *TTA {
	return &TTA{registry: registry, cutoff: cutoff, rnd: rnd}
}

// Predict classifies the tensor with the named model. n <= 1 is the fast
// single-pass path; n > 1 adds n-1 augmented views (horizontal flip,
// brightness jitter, spatial roll) and averages the distributions.
func (t *TTA) Predict(tensor *imageproc.Tensor, name string, n int) (Prediction, error) {
	classifier, err := t.registry.Get(name)
	if err != nil {
		return Prediction{}, err
	}
	classes, err := t.registry.Classes(name)
	if err != nil {
		return Prediction{}, err
	}

	if n <= 1 {
		dist, err := classifier.Predict(tensor)
		if err != nil {
			return Prediction{}, err
		}
		return t.assemble(dist, classes, false, 1), nil
	}

	dist, err := classifier.Predict(tensor)
	if err != nil {
		return Prediction{}, err
	}
	sum := make([]float64, len(dist))
	copy(sum, dist)

	for i := 1; i < n; i++ {
		view := t.augment(tensor, i)
		viewDist, err := classifier.Predict(view)
		if err != nil {
			return Prediction{}, err
		}
		for j, v := range viewDist {
			sum[j] += v
		}
	}
	for j := range sum {
		sum[j] /= float64(n)
	}
	return t.assemble(sum, classes, true, n), nil
}

// augment builds the i-th additional view. The view order matches the
// training-time jitter the classifiers saw: mirror, exposure, small shift.
func (t *TTA) augment(tensor *imageproc.Tensor, i int) *imageproc.Tensor {
	switch i {
	case 1:
		return tensor.FlipHorizontal()
	case 2:
		return tensor.Scale(0.9 + t.rnd.Float64()*0.2)
	default:
		dy, dx := imageproc.RandRoll(t.rnd)
		return tensor.Roll(dy, dx)
	}
}

func (t *TTA) assemble(dist []float64, classes []string, ttaUsed bool, n int) Prediction {
	winner, confidence := argmax(dist)
	if confidence < t.cutoff {
		ranked := argsortDesc(dist)
		p := Prediction{
			Primary: &LabelScore{
				Disease:    classes[ranked[0]],
				Confidence: dist[ranked[0]],
			},
			LowConfidence: true,
			TTAUsed:       ttaUsed,
			Augmentations: n,
			Distribution:  dist,
		}
		if len(ranked) > 1 {
			p.Secondary = &LabelScore{
				Disease:    classes[ranked[1]],
				Confidence: dist[ranked[1]],
			}
		}
		return p
	}
	return Prediction{
		Disease:       classes[winner],
		Confidence:    confidence,
		TTAUsed:       ttaUsed,
		Augmentations: n,
		Distribution:  dist,
	}
}
