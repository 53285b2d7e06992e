package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"sponsorFlow/internal/model"
)

func TestJsonlSinkAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "transfers.jsonl")
	sink := NewJsonlSink(path)

	first := model.TransferRecord{ChainID: 1, Owner: "0xaa", Outcome: "prepared", Amount: "100"}
	second := model.TransferRecord{ChainID: 1, Owner: "0xbb", Outcome: "failed", FailureKind: "network_error"}

	if err := sink.PutTransferBatch(context.Background(), []model.TransferRecord{first}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := sink.PutTransferBatch(context.Background(), []model.TransferRecord{second}); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer file.Close()

	var got []model.TransferRecord
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var record model.TransferRecord
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			t.Fatalf("parse line: %v", err)
		}
		got = append(got, record)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan output: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].Owner != "0xaa" || got[1].Owner != "0xbb" {
		t.Fatalf("records out of order: %+v", got)
	}
	if got[1].FailureKind != "network_error" {
		t.Fatalf("failure kind lost: %+v", got[1])
	}
}

func TestJsonlSinkEmptyBatchIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transfers.jsonl")
	sink := NewJsonlSink(path)

	if err := sink.PutTransferBatch(context.Background(), nil); err != nil {
		t.Fatalf("empty batch failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("empty batch must not create the file")
	}
}
