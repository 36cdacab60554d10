package pipeline

import (
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

type seriesParquetRow struct {
	ActivityID     string   `parquet:"name=activity_id, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	RecordIndex    int64    `parquet:"name=record_index, type=INT64"`
	TimestampLocal string   `parquet:"name=timestamp_local, type=BYTE_ARRAY, convertedtype=UTF8"`
	Channel        string   `parquet:"name=channel, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Unit           string   `parquet:"name=unit, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Value          *float64 `parquet:"name=value, type=DOUBLE, repetitiontype=OPTIONAL"`
}

func writeSeriesParquet(path string, rows []seriesRow) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	pw, err := writer.NewParquetWriter(fw, new(seriesParquetRow), 4)
	if err != nil {
		_ = fw.Close()
		return err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, r := range rows {
		row := seriesParquetRow{
			ActivityID:     r.ActivityID,
			RecordIndex:    int64(r.RecordIndex),
			TimestampLocal: r.TimestampLocal,
			Channel:        r.Channel,
			Unit:           r.Unit,
			Value:          r.Value,
		}
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			_ = fw.Close()
			return err
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return err
	}
	return fw.Close()
}
