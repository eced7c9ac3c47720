package parquet_accumulator

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/danthegoodman1/hitmerge/record"
	"github.com/xitongsys/parquet-go/writer"
)

type (
	// ParquetSchemaAccumulator grows a parquet schema as records are seen. The
	// identifier, value and timestamp columns are always present, extra
	// columns are added as the widest record requires them.
	ParquetSchemaAccumulator struct {
		schema ParquetSchema
		extras int
	}

	ParquetSchema struct {
		TagStructs SchemaTag        `json:"-,omitempty"`
		Fields     []*ParquetSchema `json:",omitempty"`
	}

	ParquetJSONSchema struct {
		Tag    string               `json:",omitempty"`
		Fields []*ParquetJSONSchema `json:",omitempty"`
	}

	SchemaTag struct {
		Name           string         `json:"name,omitempty"`
		Type           string         `json:"type,omitempty"`
		ConvertedType  string         `json:"convertedtype,omitempty"`
		RepetitionType RepetitionType `json:"repetitiontype,omitempty"`
	}

	RepetitionType string
)

var (
	Optional RepetitionType = "OPTIONAL"
	Required RepetitionType = "REQUIRED"
)

const (
	ColIdentifier = "Identifier"
	ColValue      = "Value"
	ColTimestamp  = "Timestamp"

	// parallelism handed to the parquet-go writer
	writerParallelism = 4
)

func NewParquetAccumulator() ParquetSchemaAccumulator {
	return ParquetSchemaAccumulator{
		schema: ParquetSchema{
			TagStructs: SchemaTag{
				Name:           "parquet_go_root",
				RepetitionType: Required,
			},
			Fields: []*ParquetSchema{
				int64Field(ColIdentifier, "UINT_64", Required),
				int64Field(ColValue, "", Required),
				int64Field(ColTimestamp, "", Required),
			},
		},
	}
}

func int64Field(name, convertedType string, rep RepetitionType) *ParquetSchema {
	return &ParquetSchema{
		TagStructs: SchemaTag{
			Name:           name,
			Type:           "INT64",
			ConvertedType:  convertedType,
			RepetitionType: rep,
		},
	}
}

func extraColName(i int) string {
	return fmt.Sprintf("Extra%d", i)
}

// WriteRow accumulates the schema for rec
func (pa *ParquetSchemaAccumulator) WriteRow(rec record.Record) {
	// Records narrower than the widest get nulls, so extras are optional
	for pa.extras < len(rec.Extra) {
		pa.schema.Fields = append(pa.schema.Fields, int64Field(extraColName(pa.extras), "", Optional))
		pa.extras++
	}
}

func (pa *ParquetSchemaAccumulator) GetColumnNames() []string {
	var cols []string
	for _, field := range pa.schema.Fields {
		cols = append(cols, field.TagStructs.Name)
	}
	return cols
}

// ToParquetJSONSchema recursively converts
func (ps *ParquetSchema) ToParquetJSONSchema() *ParquetJSONSchema {
	var tagArr []string
	if ps.TagStructs.Name != "" {
		tagArr = append(tagArr, "name="+ps.TagStructs.Name)
	}
	if ps.TagStructs.Type != "" {
		tagArr = append(tagArr, "type="+ps.TagStructs.Type)
	}
	if ps.TagStructs.ConvertedType != "" {
		tagArr = append(tagArr, "convertedtype="+ps.TagStructs.ConvertedType)
	}
	if string(ps.TagStructs.RepetitionType) != "" {
		tagArr = append(tagArr, "repetitiontype="+string(ps.TagStructs.RepetitionType))
	}
	var fields []*ParquetJSONSchema
	for _, field := range ps.Fields {
		fields = append(fields, field.ToParquetJSONSchema())
	}
	return &ParquetJSONSchema{
		Tag:    strings.Join(tagArr, ", "),
		Fields: fields,
	}
}

// GetSchemaString returns the JSON formatted schema string
func (pa *ParquetSchemaAccumulator) GetSchemaString() (string, error) {
	b, err := json.Marshal(pa.schema.ToParquetJSONSchema())
	if err != nil {
		return "", fmt.Errorf("error in json.Marshal: %w", err)
	}
	return string(b), nil
}

// rowJSON renders rec as a JSON object keyed by column name. Numbers are
// written as integer text so the writer keeps full 64 bit precision.
func rowJSON(rec record.Record) (string, error) {
	row := make(map[string]any, 3+len(rec.Extra))
	row[ColIdentifier] = rec.Identifier
	row[ColValue] = rec.Value
	row[ColTimestamp] = rec.Timestamp
	for i, v := range rec.Extra {
		row[extraColName(i)] = v
	}
	b, err := json.Marshal(row)
	if err != nil {
		return "", fmt.Errorf("error in json.Marshal: %w", err)
	}
	return string(b), nil
}

// WriteRecords encodes records, in order, as a parquet file on w. Returns the
// schema string used.
func WriteRecords(w io.Writer, records []record.Record) (string, error) {
	acc := NewParquetAccumulator()
	for _, rec := range records {
		acc.WriteRow(rec)
	}
	parquetSchema, err := acc.GetSchemaString()
	if err != nil {
		return "", fmt.Errorf("error in GetSchemaString: %w", err)
	}

	pw, err := writer.NewJSONWriterFromWriter(parquetSchema, w, writerParallelism)
	if err != nil {
		return "", fmt.Errorf("error in NewJSONWriterFromWriter: %w", err)
	}
	for _, rec := range records {
		row, err := rowJSON(rec)
		if err != nil {
			return "", err
		}
		if err = pw.Write(row); err != nil {
			return "", fmt.Errorf("error in pw.Write for row %s: %w", row, err)
		}
	}
	if err = pw.WriteStop(); err != nil {
		return "", fmt.Errorf("error in pw.WriteStop: %w", err)
	}
	return parquetSchema, nil
}
