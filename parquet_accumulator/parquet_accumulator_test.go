package parquet_accumulator

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/danthegoodman1/hitmerge/record"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
)

func TestGetSchemaString(t *testing.T) {
	a := NewParquetAccumulator()
	a.WriteRow(record.Record{Identifier: 1, Value: 2, Timestamp: 3})
	a.WriteRow(record.Record{Identifier: 1, Value: 2, Timestamp: 3, Extra: []int64{4}})
	a.WriteRow(record.Record{Identifier: 1, Value: 2, Timestamp: 3})

	schemaString, err := a.GetSchemaString()
	if err != nil {
		t.Fatal(err)
	}
	if schemaString != `{"Tag":"name=parquet_go_root, repetitiontype=REQUIRED","Fields":[{"Tag":"name=Identifier, type=INT64, convertedtype=UINT_64, repetitiontype=REQUIRED"},{"Tag":"name=Value, type=INT64, repetitiontype=REQUIRED"},{"Tag":"name=Timestamp, type=INT64, repetitiontype=REQUIRED"},{"Tag":"name=Extra0, type=INT64, repetitiontype=OPTIONAL"}]}` {
		t.Log(schemaString)
		t.Fatal("got incorrect schema string")
	}

	cols := a.GetColumnNames()
	if !reflect.DeepEqual(cols, []string{"Identifier", "Value", "Timestamp", "Extra0"}) {
		t.Fatalf("unexpected columns %+v", cols)
	}
}

func TestWriteRecordsFullCycle(t *testing.T) {
	records := []record.Record{
		{Identifier: 0x1f, Value: 10, Timestamp: 104_000_000_000_000_001},
		{Identifier: 0x2a, Value: -3, Timestamp: 104_000_000_000_000_002, Extra: []int64{9}},
		{Identifier: 0x3b, Value: 7, Timestamp: 104_000_000_000_000_002},
	}

	p := filepath.Join(t.TempDir(), "merged.parquet")
	f, err := os.Create(p)
	if err != nil {
		t.Fatal(err)
	}
	parquetSchema, err := WriteRecords(f, records)
	if err != nil {
		t.Fatal(err)
	}
	f.Close()

	fr, err := local.NewLocalFileReader(p)
	if err != nil {
		t.Fatal("Can't open file", err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, parquetSchema, 4)
	if err != nil {
		t.Fatal("Can't create parquet reader", err)
	}
	defer pr.ReadStop()

	num := int(pr.GetNumRows())
	if num != len(records) {
		t.Fatalf("expected %d rows, got %d", len(records), num)
	}

	res, err := pr.ReadByNumber(num)
	if err != nil {
		t.Fatal(err)
	}
	for i, item := range res {
		// row is a struct
		v := reflect.ValueOf(item)
		if got := v.FieldByName("Value").Int(); got != records[i].Value {
			t.Fatalf("row %d: got value %d, want %d", i, got, records[i].Value)
		}
		if got := v.FieldByName("Timestamp").Int(); got != records[i].Timestamp {
			t.Fatalf("row %d: got timestamp %d, want %d", i, got, records[i].Timestamp)
		}
		extra := v.FieldByName("Extra0")
		if len(records[i].Extra) == 0 {
			if !extra.IsNil() {
				t.Fatalf("row %d: expected null extra", i)
			}
		} else if extra.IsNil() || extra.Elem().Int() != records[i].Extra[0] {
			t.Fatalf("row %d: bad extra", i)
		}
	}
}
