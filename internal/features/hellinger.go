package features

import (
	"math"

	"gocv.io/x/gocv"
)

// hellingerEps avoids division by zero when L1-normalizing a row.
const hellingerEps = 1e-7

// Hellinger maps histogram-style descriptors into a space where Euclidean
// distance approximates the Hellinger kernel: each row is L1-normalized and
// then square-rooted element-wise. Matching SIFT descriptors in this space
// is noticeably more accurate than matching them raw.
//
// The input is left untouched; a new CV32F Mat of the same shape is returned
// and owned by the caller.
func Hellinger(descs gocv.Mat) gocv.Mat {
	rows, cols := descs.Rows(), descs.Cols()
	out := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV32F)

	for r := 0; r < rows; r++ {
		sum := float64(0)
		for c := 0; c < cols; c++ {
			sum += float64(descs.GetFloatAt(r, c))
		}
		sum += hellingerEps

		for c := 0; c < cols; c++ {
			v := float64(descs.GetFloatAt(r, c)) / sum
			out.SetFloatAt(r, c, float32(math.Sqrt(v)))
		}
	}

	return out
}
