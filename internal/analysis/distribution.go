package analysis

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"incidentscope/internal/errors"
)

// HistogramBin is one bucket of a numeric distribution.
type HistogramBin struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

// Distribution describes the shape of one numeric field.
type Distribution struct {
	Field string `json:"field"`
	Count int    `json:"count"`

	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
	Q25    float64 `json:"q25"`
	Q75    float64 `json:"q75"`

	Skewness   float64 `json:"skewness"`
	Kurtosis   float64 `json:"kurtosis"`
	IsNormal   bool    `json:"is_normal"`
	NormalityP float64 `json:"normality_p"`

	// OutlierCount uses the 1.5*IQR fence
	OutlierCount int            `json:"outlier_count"`
	Histogram    []HistogramBin `json:"histogram"`
}

// Relation describes the linear relationship between two numeric fields,
// computed over records where both are present.
type Relation struct {
	N         int     `json:"n"`
	Pearson   float64 `json:"pearson"`
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// AnalyzeDistribution computes shape statistics and a histogram for a numeric
// field. Requires at least two present values.
func AnalyzeDistribution(field string, values []float64, bins int) (Distribution, error) {
	d := Distribution{Field: field, Count: len(values)}
	if len(values) < 2 {
		return d, errors.DataInvalid("not enough values to analyze distribution of " + field)
	}

	var err error
	if d.Mean, err = stats.Mean(values); err != nil {
		return d, err
	}
	if d.StdDev, err = stats.StandardDeviation(values); err != nil {
		return d, err
	}
	if d.Min, err = stats.Min(values); err != nil {
		return d, err
	}
	if d.Max, err = stats.Max(values); err != nil {
		return d, err
	}
	if d.Median, err = stats.Median(values); err != nil {
		return d, err
	}
	if d.Q25, err = stats.Percentile(values, 25); err != nil {
		return d, err
	}
	if d.Q75, err = stats.Percentile(values, 75); err != nil {
		return d, err
	}

	d.Skewness = sampleSkewness(values, d.Mean, d.StdDev)
	d.Kurtosis = sampleKurtosis(values, d.Mean, d.StdDev)
	d.IsNormal, d.NormalityP = testNormality(d.Skewness, d.Kurtosis)
	d.OutlierCount = countOutliers(values, d.Q25, d.Q75)
	d.Histogram = buildHistogram(values, d.Min, d.Max, bins)

	return d, nil
}

// CorrelateFields fits a least-squares line through paired observations and
// reports the Pearson coefficient alongside the fit.
func CorrelateFields(xs, ys []float64) Relation {
	rel := Relation{N: len(xs)}
	if len(xs) < 2 || len(xs) != len(ys) {
		return rel
	}
	rel.Pearson = stat.Correlation(xs, ys, nil)
	rel.Intercept, rel.Slope = stat.LinearRegression(xs, ys, nil, false)
	return rel
}

// DailyTrend fits a least-squares line to daily incident counts, with X
// measured in days since the first date. A positive slope means incident
// volume is growing over the covered period.
func DailyTrend(daily []DailyCount) Relation {
	if len(daily) == 0 {
		return Relation{}
	}
	first := daily[0].Date
	xs := make([]float64, len(daily))
	ys := make([]float64, len(daily))
	for i, day := range daily {
		xs[i] = day.Date.Sub(first).Hours() / 24
		ys[i] = float64(day.Count)
	}
	return CorrelateFields(xs, ys)
}

// Histogram buckets present values into equal-width bins spanning their range.
func Histogram(values []float64, bins int) []HistogramBin {
	if len(values) == 0 {
		return nil
	}
	min, _ := stats.Min(values)
	max, _ := stats.Max(values)
	return buildHistogram(values, min, max, bins)
}

// PairedValues collects (x, y) observations where both values are present.
func PairedValues(xs, ys []float64) ([]float64, []float64) {
	px := make([]float64, 0, len(xs))
	py := make([]float64, 0, len(ys))
	for i := range xs {
		if i >= len(ys) {
			break
		}
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		px = append(px, xs[i])
		py = append(py, ys[i])
	}
	return px, py
}

// sampleSkewness computes the adjusted Fisher-Pearson coefficient of skewness.
func sampleSkewness(values []float64, mean, stdDev float64) float64 {
	if len(values) < 3 || stdDev == 0 {
		return 0
	}

	n := float64(len(values))
	sum := 0.0
	for _, x := range values {
		d := (x - mean) / stdDev
		sum += d * d * d
	}

	return (sum / n) * math.Sqrt(n*(n-1)) / (n - 2)
}

// sampleKurtosis computes bias-corrected sample kurtosis (normal = 3).
func sampleKurtosis(values []float64, mean, stdDev float64) float64 {
	if len(values) < 4 || stdDev == 0 {
		return 0
	}

	n := float64(len(values))
	sum := 0.0
	for _, x := range values {
		d := (x - mean) / stdDev
		sum += d * d * d * d
	}

	excess := sum/n - 3
	correction := (n - 1) / ((n - 2) * (n - 3))
	return excess*correction + 6/(n+1) + 3
}

// testNormality approximates a normality test from the skewness and kurtosis.
// The combined statistic is compared against a chi-squared distribution with
// two degrees of freedom.
func testNormality(skewness, kurtosis float64) (isNormal bool, pValue float64) {
	testStat := math.Abs(skewness) + math.Abs(kurtosis-3)/2
	chiDist := distuv.ChiSquared{K: 2}
	pValue = 1 - chiDist.CDF(testStat*testStat)
	return pValue > 0.05, pValue
}

// countOutliers applies the 1.5*IQR fence.
func countOutliers(values []float64, q25, q75 float64) int {
	iqr := q75 - q25
	lower := q25 - 1.5*iqr
	upper := q75 + 1.5*iqr

	count := 0
	for _, x := range values {
		if x < lower || x > upper {
			count++
		}
	}
	return count
}

// buildHistogram buckets values into equal-width bins over [min, max]. The
// max value lands in the last bin.
func buildHistogram(values []float64, min, max float64, bins int) []HistogramBin {
	if bins <= 0 {
		bins = 30
	}
	if max <= min {
		return []HistogramBin{{Low: min, High: max, Count: len(values)}}
	}

	width := (max - min) / float64(bins)
	histogram := make([]HistogramBin, bins)
	for i := range histogram {
		histogram[i].Low = min + float64(i)*width
		histogram[i].High = min + float64(i+1)*width
	}

	for _, x := range values {
		idx := int((x - min) / width)
		if idx >= bins {
			idx = bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		histogram[idx].Count++
	}
	return histogram
}
