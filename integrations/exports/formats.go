package exports

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/xitongsys/parquet-go-source/writerfile"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

// CSV builds a CSV export of rows and returns the serialised data alongside a
// SHA-256 checksum of the payload.
func CSV(rows []Row) ([]byte, string, error) {
	buffer := &bytes.Buffer{}
	w := csv.NewWriter(buffer)
	header := []string{"sequence", "type", "flow", "payer", "creator", "gross", "fee", "net", "timestamp", "digest"}
	if err := w.Write(header); err != nil {
		return nil, "", err
	}
	for _, row := range rows {
		record := []string{
			strconv.FormatInt(row.Sequence, 10),
			row.Type,
			row.Flow,
			row.Payer,
			row.Creator,
			strconv.FormatUint(row.Gross, 10),
			strconv.FormatUint(row.Fee, 10),
			strconv.FormatUint(row.Net, 10),
			strconv.FormatInt(row.Timestamp, 10),
			row.Digest,
		}
		if err := w.Write(record); err != nil {
			return nil, "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", err
	}
	data := buffer.Bytes()
	checksum := sha256.Sum256(data)
	return data, hex.EncodeToString(checksum[:]), nil
}

// JSONL builds a JSON Lines export of rows plus a checksum.
func JSONL(rows []Row) ([]byte, string, error) {
	buffer := &bytes.Buffer{}
	encoder := json.NewEncoder(buffer)
	encoder.SetEscapeHTML(false)
	for _, row := range rows {
		if err := encoder.Encode(row); err != nil {
			return nil, "", err
		}
	}
	data := buffer.Bytes()
	checksum := sha256.Sum256(data)
	return data, hex.EncodeToString(checksum[:]), nil
}

type parquetRow struct {
	Sequence  int64  `parquet:"name=sequence, type=INT64"`
	Type      string `parquet:"name=type, type=UTF8, encoding=PLAIN_DICTIONARY"`
	Flow      string `parquet:"name=flow, type=UTF8, encoding=PLAIN_DICTIONARY"`
	Payer     string `parquet:"name=payer, type=UTF8"`
	Creator   string `parquet:"name=creator, type=UTF8"`
	Gross     uint64 `parquet:"name=gross, type=UINT_64"`
	Fee       uint64 `parquet:"name=fee, type=UINT_64"`
	Net       uint64 `parquet:"name=net, type=UINT_64"`
	Timestamp int64  `parquet:"name=timestamp, type=INT64"`
	Digest    string `parquet:"name=digest, type=UTF8"`
}

// WriteParquet writes rows as a snappy-compressed parquet file at path.
func WriteParquet(path string, rows []Row) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("exports: create parquet: %w", err)
	}
	fw := writerfile.NewWriterFile(file)
	pw, err := writer.NewParquetWriter(fw, new(parquetRow), 1)
	if err != nil {
		file.Close()
		return fmt.Errorf("exports: parquet schema: %w", err)
	}
	pw.RowGroupSize = 16 * 1024 * 1024
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, row := range rows {
		pr := &parquetRow{
			Sequence:  row.Sequence,
			Type:      row.Type,
			Flow:      row.Flow,
			Payer:     row.Payer,
			Creator:   row.Creator,
			Gross:     row.Gross,
			Fee:       row.Fee,
			Net:       row.Net,
			Timestamp: row.Timestamp,
			Digest:    row.Digest,
		}
		if err := pw.Write(pr); err != nil {
			pw.WriteStop()
			file.Close()
			return fmt.Errorf("exports: parquet write: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		file.Close()
		return fmt.Errorf("exports: parquet flush: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("exports: close parquet file: %w", err)
	}
	return nil
}
