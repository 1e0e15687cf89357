// Package export writes activity streams to flat files for offline analysis.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/oddwes/ridesofjulian/internal/provider/strava"
	"github.com/oddwes/ridesofjulian/internal/training"
)

// Format selects the output encoding.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

// ParseFormat accepts "csv" or "parquet", case-insensitively.
func ParseFormat(value string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(value))); f {
	case FormatCSV, FormatParquet:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", value)
	}
}

// Sample is one aligned stream index. Missing values are NaN.
type Sample struct {
	ElapsedS   float64 `parquet:"name=elapsed_s, type=DOUBLE"`
	PowerW     float64 `parquet:"name=power_w, type=DOUBLE"`
	HRBPM      float64 `parquet:"name=hr_bpm, type=DOUBLE"`
	CadenceRPM float64 `parquet:"name=cadence_rpm, type=DOUBLE"`
	DistanceM  float64 `parquet:"name=distance_m, type=DOUBLE"`
	AltitudeM  float64 `parquet:"name=altitude_m, type=DOUBLE"`
	ValidPower bool    `parquet:"name=valid_power, type=BOOLEAN"`
}

var csvHeader = []string{"elapsed_s", "power_w", "hr_bpm", "cadence_rpm", "distance_m", "altitude_m"}

// Samples aligns the streams of set by index.
func Samples(set strava.StreamSet) []Sample {
	n := set.Len()
	out := make([]Sample, n)
	for i := range out {
		s := Sample{
			ElapsedS:   at(set.Time, i),
			PowerW:     at(set.Watts, i),
			HRBPM:      at(set.Heartrate, i),
			CadenceRPM: at(set.Cadence, i),
			DistanceM:  at(set.Distance, i),
			AltitudeM:  at(set.Altitude, i),
		}
		if math.IsNaN(s.ElapsedS) {
			s.ElapsedS = float64(i)
		}
		s.ValidPower = !math.IsNaN(s.PowerW)
		out[i] = s
	}
	return out
}

func at(st *strava.Stream, i int) float64 {
	if st == nil || i >= len(st.Data) {
		return math.NaN()
	}
	return st.Data[i]
}

// Write encodes samples as format to w.
func Write(w io.Writer, format Format, samples []Sample) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, samples)
	case FormatParquet:
		data, err := MarshalParquet(samples)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// WriteCSV writes a header row followed by one row per sample. NaN values are
// written as empty cells.
func WriteCSV(w io.Writer, samples []Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, s := range samples {
		row := []string{
			formatValue(s.ElapsedS),
			formatValue(s.PowerW),
			formatValue(s.HRBPM),
			formatValue(s.CadenceRPM),
			formatValue(s.DistanceM),
			formatValue(s.AltitudeM),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// MarshalParquet encodes samples as a SNAPPY-compressed Parquet file.
func MarshalParquet(samples []Sample) ([]byte, error) {
	fw := parquetbuffer.NewBufferFile()
	pw, err := writer.NewParquetWriter(fw, new(Sample), 4)
	if err != nil {
		return nil, err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, s := range samples {
		if err := pw.Write(s); err != nil {
			_ = pw.WriteStop()
			return nil, err
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}

// Summary describes the power content of an exported stream.
type Summary struct {
	Samples         int         `json:"samples"`
	PowerSamples    int         `json:"power_samples"`
	AveragePower    float64     `json:"average_power"`
	NormalizedPower float64     `json:"normalized_power"`
	TimeInZones     map[int]int `json:"time_in_zones,omitempty"`
}

// Summarize computes power statistics. Time in zones is omitted when ftp is not positive.
func Summarize(samples []Sample, ftp float64) Summary {
	power := make([]float64, 0, len(samples))
	for _, s := range samples {
		if s.ValidPower {
			power = append(power, s.PowerW)
		}
	}
	sum := 0.0
	for _, p := range power {
		sum += p
	}
	out := Summary{
		Samples:         len(samples),
		PowerSamples:    len(power),
		NormalizedPower: training.NormalizedPower(power),
		TimeInZones:     training.StreamTimeInZones(power, ftp),
	}
	if len(power) > 0 {
		out.AveragePower = sum / float64(len(power))
	}
	return out
}
