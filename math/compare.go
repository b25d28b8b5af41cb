package math

// MaxInt returns the larger of a and b
func MaxInt(a, b int) int {
	if a < b {
		return b
	}
	return a
}

// AbsInt returns the absolute value of a
func AbsInt(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

// DistanceInt returns the absolute distance between a and b
func DistanceInt(a, b int) int {
	return AbsInt(a - b)
}
