package knowledge

import "math"

// CosineSimilarity returns the cosine of the angle between a and b in
// [-1, 1]. It is defined as 0 when either vector has zero norm or the
// lengths differ: degraded inputs rank as "no similarity" instead of
// failing the whole retrieval.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
