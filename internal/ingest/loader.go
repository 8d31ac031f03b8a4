package ingest

import (
	"log"

	"incidentscope/adapters/excel"
	"incidentscope/domain/incident"
	"incidentscope/internal"
	"incidentscope/internal/errors"
)

// Source column names of the incident export.
const (
	ColIncidentNumber  = "incident_number"
	ColAlarm           = "alarm_datetime"
	ColArrival         = "arrival_datetime"
	ColControlled      = "controlled_datetime"
	ColLastUnitCleared = "last_unit_cleared_datetime"
	ColCreatedAt       = "incident_created_at"
	ColType            = "incident_type"
	ColCategory        = "incident_category"
	ColDescription     = "incident_description"
	ColCity            = "city"
	ColZipCode         = "zip_code"
	ColPlaceType       = "place_type"
	ColLatitude        = "latitude"
	ColLongitude       = "longitude"
	ColResponseMinutes = "response_time_minutes"
	ColControlMinutes  = "control_time_minutes"
	ColTotalMinutes    = "total_time_minutes"
	ColUnitsResponded  = "units_responded"
	ColTotalCasualties = "total_casualties"
	ColTransport       = "transport_disposition"
	ColPatientCare     = "patient_care_evaluation"
	ColPeoplePresent   = "people_present"
	ColFireSuppression = "fire_suppression_present"
)

// Load reads an incident CSV or XLSX file into a cleaned dataset.
func Load(filePath string) (*incident.Dataset, error) {
	reader := excel.NewDataReader(filePath)
	table, err := reader.ReadTable()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load incidents from %s", filePath)
	}
	return FromTable(table, filePath, reader.FileSize())
}

// FromTable converts a raw string table into a cleaned incident dataset.
// Columns are mapped by header name so column order is irrelevant; unknown
// columns are kept only in the per-field quality metadata.
func FromTable(table *excel.Table, sourcePath string, fileSize int64) (*incident.Dataset, error) {
	if len(table.Rows) == 0 {
		return nil, errors.DataInvalid("incident file has no data rows")
	}
	for _, col := range []string{ColIncidentNumber, ColAlarm, ColType} {
		if !table.HasColumn(col) {
			internal.DefaultLogger.Warn("[Ingest] expected column %s missing from %s", col, sourcePath)
		}
	}

	ds := incident.NewDataset(sourcePath)
	ds.FileSize = fileSize
	ds.Records = make([]incident.Incident, 0, len(table.Rows))

	for _, row := range table.Rows {
		in := incident.Incident{
			Number:                 row[ColIncidentNumber],
			Alarm:                  ParseTime(row[ColAlarm]),
			Arrival:                ParseTime(row[ColArrival]),
			Controlled:             ParseTime(row[ColControlled]),
			LastUnitCleared:        ParseTime(row[ColLastUnitCleared]),
			CreatedAt:              ParseTime(row[ColCreatedAt]),
			Type:                   row[ColType],
			Category:               row[ColCategory],
			Description:            row[ColDescription],
			City:                   row[ColCity],
			ZipCode:                row[ColZipCode],
			PlaceType:              row[ColPlaceType],
			Latitude:               ParseFloat(row[ColLatitude]),
			Longitude:              ParseFloat(row[ColLongitude]),
			ResponseMinutes:        ParseFloat(row[ColResponseMinutes]),
			ControlMinutes:         ParseFloat(row[ColControlMinutes]),
			TotalMinutes:           ParseFloat(row[ColTotalMinutes]),
			UnitsResponded:         ParseFloat(row[ColUnitsResponded]),
			TotalCasualties:        ParseFloat(row[ColTotalCasualties]),
			TransportDisposition:   row[ColTransport],
			PatientCareEvaluation:  row[ColPatientCare],
			PeoplePresent:          ParseBool(row[ColPeoplePresent]),
			FireSuppressionPresent: ParseBool(row[ColFireSuppression]),
		}
		in.Derive()
		ds.Records = append(ds.Records, in)
	}

	ds.Fields = buildFieldInfo(table)

	valid := 0
	for i := range ds.Records {
		if ds.Records[i].HasAlarm() {
			valid++
		}
	}
	log.Printf("[Ingest] loaded %d incidents from %s (%d with valid alarm datetime)",
		len(ds.Records), sourcePath, valid)

	return ds, nil
}

// knownColumnTypes pins the declared type of the documented export columns so
// sparse files still report sensible types.
var knownColumnTypes = map[string]string{
	ColAlarm:           "datetime",
	ColArrival:         "datetime",
	ColControlled:      "datetime",
	ColLastUnitCleared: "datetime",
	ColCreatedAt:       "datetime",
	ColLatitude:        "numeric",
	ColLongitude:       "numeric",
	ColResponseMinutes: "numeric",
	ColControlMinutes:  "numeric",
	ColTotalMinutes:    "numeric",
	ColUnitsResponded:  "numeric",
	ColTotalCasualties: "numeric",
	ColPeoplePresent:   "boolean",
	ColFireSuppression: "boolean",
}

// buildFieldInfo computes per-column quality metadata over the raw table.
func buildFieldInfo(table *excel.Table) []incident.FieldInfo {
	fields := make([]incident.FieldInfo, 0, len(table.Headers))
	for _, header := range table.Headers {
		values := table.Column(header)

		missing := 0
		unique := make(map[string]struct{})
		for _, v := range values {
			if v == "" {
				missing++
				continue
			}
			unique[v] = struct{}{}
		}

		dataType, ok := knownColumnTypes[header]
		if !ok {
			dataType = inferColumnType(values)
			internal.DefaultLogger.Debug("[Ingest] inferred column %s as %s", header, dataType)
		}

		fields = append(fields, incident.FieldInfo{
			Name:         header,
			DataType:     dataType,
			MissingCount: missing,
			UniqueCount:  len(unique),
		})
	}
	return fields
}

// inferColumnType samples up to 100 non-empty cells and picks the dominant
// coercible type, text when nothing else fits.
func inferColumnType(values []string) string {
	const sampleLimit = 100

	sampled, numeric, timestamp, boolean := 0, 0, 0, 0
	for _, v := range values {
		if v == "" {
			continue
		}
		if LooksBoolean(v) {
			boolean++
		}
		if LooksNumeric(v) {
			numeric++
		}
		if LooksTimestamp(v) {
			timestamp++
		}
		sampled++
		if sampled >= sampleLimit {
			break
		}
	}

	if sampled == 0 {
		return "text"
	}
	// Booleans before numerics: '1'/'0' cells parse as both.
	if boolean == sampled {
		return "boolean"
	}
	if timestamp > sampled/2 {
		return "datetime"
	}
	if numeric > sampled/2 {
		return "numeric"
	}
	return "text"
}
