package analysis

import (
	"sort"

	"incidentscope/domain/incident"
)

// Completeness bucket thresholds, percent of non-missing cells.
const (
	highQualityThreshold = 95
	goodQualityThreshold = 80
)

// FieldQuality is the per-column quality row of a dataset.
type FieldQuality struct {
	Name         string  `json:"name"`
	DataType     string  `json:"data_type"`
	Completeness float64 `json:"completeness"`
	MissingPct   float64 `json:"missing_pct"`
	UniqueCount  int     `json:"unique_count"`
}

// QualityReport classifies dataset columns by completeness.
type QualityReport struct {
	TotalRecords int `json:"total_records"`
	TotalColumns int `json:"total_columns"`

	HighQualityColumns int `json:"high_quality_columns"` // >= 95% complete
	GoodQualityColumns int `json:"good_quality_columns"` // 80-95% complete
	PoorQualityColumns int `json:"poor_quality_columns"` // < 80% complete

	Fields []FieldQuality `json:"fields"`

	// MissingFields lists columns with any missing cells, worst first.
	MissingFields []FieldQuality `json:"missing_fields"`
}

// AssessQuality builds the completeness report from the dataset field metadata.
func AssessQuality(ds *incident.Dataset) *QualityReport {
	report := &QualityReport{
		TotalRecords: len(ds.Records),
		TotalColumns: len(ds.Fields),
	}

	for _, field := range ds.Fields {
		completeness := field.Completeness(len(ds.Records))
		fq := FieldQuality{
			Name:         field.Name,
			DataType:     field.DataType,
			Completeness: completeness,
			MissingPct:   100 - completeness,
			UniqueCount:  field.UniqueCount,
		}
		report.Fields = append(report.Fields, fq)

		switch {
		case completeness >= highQualityThreshold:
			report.HighQualityColumns++
		case completeness >= goodQualityThreshold:
			report.GoodQualityColumns++
		default:
			report.PoorQualityColumns++
		}

		if field.MissingCount > 0 {
			report.MissingFields = append(report.MissingFields, fq)
		}
	}

	sort.Slice(report.MissingFields, func(i, j int) bool {
		if report.MissingFields[i].MissingPct != report.MissingFields[j].MissingPct {
			return report.MissingFields[i].MissingPct > report.MissingFields[j].MissingPct
		}
		return report.MissingFields[i].Name < report.MissingFields[j].Name
	})

	return report
}
