package pinstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestRecordAndLookup(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "pins.json"))
	pool := common.HexToAddress("0xAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAa")
	hash := common.HexToHash("0x0102030405060708091011121314151617181920212223242526272829303132")

	if err := store.Record(pool, hash); err != nil {
		t.Fatalf("record failed: %v", err)
	}

	got, ok, err := store.Lookup(pool)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if !ok {
		t.Fatalf("expected pin to be found")
	}
	if got != hash {
		t.Fatalf("hash mismatch: %s != %s", got.Hex(), hash.Hex())
	}
}

func TestLookupMissingPool(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "pins.json"))

	_, ok, err := store.Lookup(common.HexToAddress("0x000000000000000000000000000000000000dEaD"))
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if ok {
		t.Fatalf("expected no pin for unrecorded pool")
	}
}

func TestRecordReplacesPriorPin(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "pins.json"))
	pool := common.HexToAddress("0xAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAa")
	first := common.HexToHash("0x01")
	second := common.HexToHash("0x02")

	if err := store.Record(pool, first); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if err := store.Record(pool, second); err != nil {
		t.Fatalf("record failed: %v", err)
	}

	got, ok, err := store.Lookup(pool)
	if err != nil || !ok {
		t.Fatalf("lookup failed: ok=%v err=%v", ok, err)
	}
	if got != second {
		t.Fatalf("expected latest pin, got %s", got.Hex())
	}
}

func TestRecordCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "pins.json")
	store := NewStore(path)

	if err := store.Record(common.HexToAddress("0x01"), common.HexToHash("0x02")); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("pin file missing: %v", err)
	}
}

func TestLookupCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pins.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	store := NewStore(path)
	if _, _, err := store.Lookup(common.HexToAddress("0x01")); err == nil {
		t.Fatalf("expected error for corrupt pin file")
	}
}
