package storage

import (
	"encoding/json"
	"errors"
	"sort"

	"ecalab/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

// Stamp returns the current schema and codec versions.
func Stamp() model.VersionedRecord {
	return model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}

func EncodeReport(r model.Report) ([]byte, error) {
	return json.Marshal(r)
}

func DecodeReport(data []byte) (model.Report, error) {
	var report model.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return model.Report{}, err
	}
	if err := checkVersion(report.VersionedRecord); err != nil {
		return model.Report{}, err
	}
	return report, nil
}

func EncodeSeries(s model.Series) ([]byte, error) {
	return json.Marshal(s)
}

func DecodeSeries(data []byte) (model.Series, error) {
	var series model.Series
	if err := json.Unmarshal(data, &series); err != nil {
		return model.Series{}, err
	}
	if err := checkVersion(series.VersionedRecord); err != nil {
		return model.Series{}, err
	}
	return series, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}

// sortReports orders newest first, breaking ties by id.
func sortReports(reports []model.Report) {
	sort.Slice(reports, func(i, j int) bool {
		if reports[i].CreatedAtUTC == reports[j].CreatedAtUTC {
			return reports[i].ID < reports[j].ID
		}
		return reports[i].CreatedAtUTC > reports[j].CreatedAtUTC
	})
}
