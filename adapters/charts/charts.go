package charts

import (
	"image/color"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"incidentscope/domain/incident"
	"incidentscope/internal/analysis"
	"incidentscope/internal/errors"
)

// Output chart file names written under the output directory.
const (
	TypeDistributionFile  = "type_distribution.png"
	ResponseByTypeFile    = "response_by_type.png"
	HourlyPatternFile     = "hourly_incidents.png"
	WeekdayPatternFile    = "weekday_incidents.png"
	TopCitiesFile         = "top_cities.png"
	PlaceTypesFile        = "place_types.png"
	ResponseHistogramFile = "response_histogram.png"
	ResponseControlFile   = "response_vs_control.png"
	UnitsRespondedFile    = "units_responded.png"
	DailyTimelineFile     = "daily_timeline.png"
	TotalByCategoryFile   = "total_time_by_category.png"
)

var (
	barColor    = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	lineColor   = color.RGBA{R: 178, G: 34, B: 34, A: 255}
	scatterGray = color.RGBA{R: 60, G: 60, B: 60, A: 140}
)

// Renderer writes static PNG charts for a dataset into one output directory.
type Renderer struct {
	outputDir string
	bins      int
}

// NewRenderer creates a chart renderer; bins controls histogram resolution.
func NewRenderer(outputDir string, bins int) *Renderer {
	if bins <= 0 {
		bins = 30
	}
	return &Renderer{outputDir: outputDir, bins: bins}
}

// RenderAll renders the full chart set concurrently and returns the paths of
// the written files. Rendering stops at the first failure.
func (r *Renderer) RenderAll(records []incident.Incident, s *analysis.Summary) ([]string, error) {
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create output dir %s", r.outputDir)
	}

	start := time.Now()
	jobs := []func() (string, error){
		func() (string, error) { return r.TypeDistribution(s) },
		func() (string, error) { return r.ResponseByType(records) },
		func() (string, error) { return r.HourlyPattern(s) },
		func() (string, error) { return r.WeekdayPattern(s) },
		func() (string, error) { return r.TopCities(s) },
		func() (string, error) { return r.PlaceTypes(s) },
		func() (string, error) { return r.ResponseHistogram(records) },
		func() (string, error) { return r.ResponseVsControl(records) },
		func() (string, error) { return r.UnitsResponded(records) },
		func() (string, error) { return r.DailyTimeline(s) },
		func() (string, error) { return r.TotalTimeByCategory(records) },
	}

	paths := make([]string, len(jobs))
	var g errgroup.Group
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			path, err := job()
			if err != nil {
				return err
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Printf("[Charts] rendered %d charts to %s in %.2fms",
		len(paths), r.outputDir, float64(time.Since(start).Nanoseconds())/1e6)
	return paths, nil
}

// TypeDistribution renders the main incident type breakdown as bars.
func (r *Renderer) TypeDistribution(s *analysis.Summary) (string, error) {
	return r.countBars(TypeDistributionFile, "Incident Type Distribution",
		"Number of Incidents", s.TypeBreakdown)
}

// ResponseByType renders the average response time per main incident type.
func (r *Renderer) ResponseByType(records []incident.Incident) (string, error) {
	groups := analysis.GroupMeans(records, 8,
		func(in *incident.Incident) string { return in.MainType },
		func(in *incident.Incident) float64 { return in.ResponseMinutes })

	p := newPlot("Average Response Time by Incident Type", "", "Minutes")
	if len(groups) == 0 {
		return r.saveEmpty(p, ResponseByTypeFile)
	}

	values := make(plotter.Values, len(groups))
	labels := make([]string, len(groups))
	for i, group := range groups {
		values[i] = group.Mean
		labels[i] = group.Label
	}
	if err := addBars(p, values, labels); err != nil {
		return "", errors.RenderError(ResponseByTypeFile, err)
	}
	return r.save(p, ResponseByTypeFile)
}

// HourlyPattern renders the incident count per hour of day as a line.
func (r *Renderer) HourlyPattern(s *analysis.Summary) (string, error) {
	p := newPlot("Incidents by Hour of Day", "Hour", "Number of Incidents")
	if s.PeakHour < 0 {
		return r.saveEmpty(p, HourlyPatternFile)
	}

	points := make(plotter.XYs, len(s.HourlyCounts))
	for hour, count := range s.HourlyCounts {
		points[hour].X = float64(hour)
		points[hour].Y = float64(count)
	}

	line, scatter, err := plotter.NewLinePoints(points)
	if err != nil {
		return "", errors.RenderError(HourlyPatternFile, err)
	}
	line.Color = lineColor
	scatter.GlyphStyle.Color = lineColor
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(line, scatter, plotter.NewGrid())
	return r.save(p, HourlyPatternFile)
}

// WeekdayPattern renders the incident count per weekday in calendar order.
func (r *Renderer) WeekdayPattern(s *analysis.Summary) (string, error) {
	return r.countBars(WeekdayPatternFile, "Incidents by Day of Week",
		"Number of Incidents", s.WeekdayCounts)
}

// TopCities renders the busiest cities as bars.
func (r *Renderer) TopCities(s *analysis.Summary) (string, error) {
	return r.countBars(TopCitiesFile, "Top Cities by Incident Count",
		"Number of Incidents", s.TopCities)
}

// PlaceTypes renders the place type breakdown as bars.
func (r *Renderer) PlaceTypes(s *analysis.Summary) (string, error) {
	return r.countBars(PlaceTypesFile, "Incidents by Place Type",
		"Number of Incidents", s.PlaceTypes)
}

// ResponseHistogram renders the response time distribution.
func (r *Renderer) ResponseHistogram(records []incident.Incident) (string, error) {
	values := analysis.NumericValues(records, func(in *incident.Incident) float64 {
		return in.ResponseMinutes
	})

	p := newPlot("Response Time Distribution", "Response Time (minutes)", "Frequency")
	if len(values) == 0 {
		return r.saveEmpty(p, ResponseHistogramFile)
	}

	hist, err := plotter.NewHist(plotter.Values(values), r.bins)
	if err != nil {
		return "", errors.RenderError(ResponseHistogramFile, err)
	}
	hist.FillColor = barColor
	p.Add(hist)
	return r.save(p, ResponseHistogramFile)
}

// ResponseVsControl renders response time against control time as a scatter,
// over records where both values are present.
func (r *Renderer) ResponseVsControl(records []incident.Incident) (string, error) {
	p := newPlot("Response Time vs Control Time",
		"Response Time (minutes)", "Control Time (minutes)")

	points := make(plotter.XYs, 0, len(records))
	for i := range records {
		in := &records[i]
		if math.IsNaN(in.ResponseMinutes) || math.IsNaN(in.ControlMinutes) {
			continue
		}
		points = append(points, plotter.XY{X: in.ResponseMinutes, Y: in.ControlMinutes})
	}
	if len(points) == 0 {
		return r.saveEmpty(p, ResponseControlFile)
	}

	scatter, err := plotter.NewScatter(points)
	if err != nil {
		return "", errors.RenderError(ResponseControlFile, err)
	}
	scatter.GlyphStyle.Color = scatterGray
	scatter.GlyphStyle.Radius = vg.Points(2)
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(scatter, plotter.NewGrid())
	return r.save(p, ResponseControlFile)
}

// TotalTimeByCategory renders the average total incident duration per
// incident category.
func (r *Renderer) TotalTimeByCategory(records []incident.Incident) (string, error) {
	groups := analysis.GroupMeans(records, 8,
		func(in *incident.Incident) string { return in.Category },
		func(in *incident.Incident) float64 { return in.TotalMinutes })

	p := newPlot("Average Total Time by Incident Category", "", "Minutes")
	if len(groups) == 0 {
		return r.saveEmpty(p, TotalByCategoryFile)
	}

	values := make(plotter.Values, len(groups))
	labels := make([]string, len(groups))
	for i, group := range groups {
		values[i] = group.Mean
		labels[i] = group.Label
	}
	if err := addBars(p, values, labels); err != nil {
		return "", errors.RenderError(TotalByCategoryFile, err)
	}
	return r.save(p, TotalByCategoryFile)
}

// UnitsResponded renders the distribution of units responded per incident.
func (r *Renderer) UnitsResponded(records []incident.Incident) (string, error) {
	counts := make(map[int]int)
	maxUnits := 0
	for i := range records {
		v := records[i].UnitsResponded
		if math.IsNaN(v) || v < 0 {
			continue
		}
		units := int(v)
		counts[units]++
		if units > maxUnits {
			maxUnits = units
		}
	}

	p := newPlot("Distribution of Units Responded", "Number of Units", "Number of Incidents")
	if len(counts) == 0 {
		return r.saveEmpty(p, UnitsRespondedFile)
	}

	values := make(plotter.Values, maxUnits+1)
	labels := make([]string, maxUnits+1)
	for units := 0; units <= maxUnits; units++ {
		values[units] = float64(counts[units])
		labels[units] = strconv.Itoa(units)
	}
	if err := addBars(p, values, labels); err != nil {
		return "", errors.RenderError(UnitsRespondedFile, err)
	}
	return r.save(p, UnitsRespondedFile)
}

// DailyTimeline renders the incident count per calendar day.
func (r *Renderer) DailyTimeline(s *analysis.Summary) (string, error) {
	p := newPlot("Incidents Over Time", "Date", "Number of Incidents")
	if len(s.DailyCounts) == 0 {
		return r.saveEmpty(p, DailyTimelineFile)
	}

	points := make(plotter.XYs, len(s.DailyCounts))
	for i, day := range s.DailyCounts {
		points[i].X = float64(day.Date.Unix())
		points[i].Y = float64(day.Count)
	}

	line, err := plotter.NewLine(points)
	if err != nil {
		return "", errors.RenderError(DailyTimelineFile, err)
	}
	line.Color = lineColor
	p.Add(line, plotter.NewGrid())
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.YAlign = draw.YCenter
	p.X.Tick.Label.XAlign = draw.XRight
	return r.save(p, DailyTimelineFile)
}

// countBars renders a categorical breakdown as a labeled bar chart.
func (r *Renderer) countBars(filename, title, ylabel string, items []analysis.CountItem) (string, error) {
	p := newPlot(title, "", ylabel)
	if len(items) == 0 {
		return r.saveEmpty(p, filename)
	}

	values := make(plotter.Values, len(items))
	labels := make([]string, len(items))
	for i, item := range items {
		values[i] = float64(item.Count)
		labels[i] = item.Label
	}
	if err := addBars(p, values, labels); err != nil {
		return "", errors.RenderError(filename, err)
	}
	return r.save(p, filename)
}

func (r *Renderer) save(p *plot.Plot, filename string) (string, error) {
	path := filepath.Join(r.outputDir, filename)
	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return "", errors.RenderError(filename, err)
	}
	return path, nil
}

// saveEmpty writes a placeholder chart when the dataset carries no usable
// values for the plot.
func (r *Renderer) saveEmpty(p *plot.Plot, filename string) (string, error) {
	p.Title.Text += " - No Data"
	// Pin the axis ranges: with no plotters they stay infinite.
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1
	return r.save(p, filename)
}

func newPlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	return p
}

func addBars(p *plot.Plot, values plotter.Values, labels []string) error {
	bars, err := plotter.NewBarChart(values, vg.Points(24))
	if err != nil {
		return err
	}
	bars.Color = barColor
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.YAlign = draw.YCenter
	p.X.Tick.Label.XAlign = draw.XRight
	return nil
}
