package kde

import (
	"math"

	"github.com/uyouii/cohort-analytics/iqr"
	"gonum.org/v1/gonum/stat"
)

type BandWidth interface {
	BandWidth([]float64) float64
}

// NormalReferenceBandWidth is Scott's rule scaled by the kernel's normal
// reference constant.
type NormalReferenceBandWidth struct {
	kernel Kernel
}

func NewNormalReferenceBandWidth(kernel Kernel) *NormalReferenceBandWidth {
	if kernel == nil {
		kernel = NewGaussianKernel()
	}
	return &NormalReferenceBandWidth{
		kernel: kernel,
	}
}

func (bw *NormalReferenceBandWidth) BandWidth(x []float64) float64 {
	C := bw.kernel.NormalReferenceConstant()
	A := selectSigma(x)
	n := len(x)
	return C * A * math.Pow(float64(n), -0.2)
}

// selectSigma is min(std, IQR/1.349), falling back to std when the IQR is 0.
func selectSigma(x []float64) float64 {
	stdDev := stat.StdDev(x, nil)

	qs, err := iqr.Quartiles(x)
	if err != nil {
		return stdDev
	}
	spread := qs.IQR() / IQRNormalize
	if spread > 0 && spread < stdDev {
		return spread
	}
	return stdDev
}
