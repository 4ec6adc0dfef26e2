package textutil

// CosineSimilarity returns the cosine of the angle between a and b, or 0 when
// either side is empty.
func CosineSimilarity(a, b *Fingerprint) float64 {
	if a == nil || b == nil || a.norm == 0 || b.norm == 0 {
		return 0
	}
	// Iterate the smaller map.
	if len(b.weights) < len(a.weights) {
		a, b = b, a
	}
	var dot float64
	for term, w := range a.weights {
		dot += w * b.weights[term]
	}
	return dot / (a.norm * b.norm)
}
