package pinstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Pin records the expected runtime bytecode hash for a verified pool,
// captured once at deployment/verification time.
type Pin struct {
	RuntimeCodeHash string `json:"runtime_code_hash"`
	RecordedAt      string `json:"recorded_at"`
}

// Store persists expected-hash pins to a JSON file. It is the one piece of
// state that survives process restarts.
type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) load() (map[string]Pin, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]Pin{}, nil
		}
		return nil, fmt.Errorf("read pin file: %w", err)
	}

	pins := map[string]Pin{}
	if err := json.Unmarshal(data, &pins); err != nil {
		return nil, fmt.Errorf("parse pin file: %w", err)
	}
	return pins, nil
}

// Lookup returns the pinned hash for a pool, if one was recorded.
func (s *Store) Lookup(pool common.Address) (common.Hash, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pins, err := s.load()
	if err != nil {
		return common.Hash{}, false, err
	}

	pin, ok := pins[strings.ToLower(pool.Hex())]
	if !ok {
		return common.Hash{}, false, nil
	}
	return common.HexToHash(pin.RuntimeCodeHash), true, nil
}

// Record pins the expected runtime hash for a pool, replacing any prior pin.
func (s *Store) Record(pool common.Address, runtimeCodeHash common.Hash) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pins, err := s.load()
	if err != nil {
		return err
	}

	pins[strings.ToLower(pool.Hex())] = Pin{
		RuntimeCodeHash: runtimeCodeHash.Hex(),
		RecordedAt:      time.Now().UTC().Format(time.RFC3339Nano),
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create pin dir: %w", err)
		}
	}

	data, err := json.MarshalIndent(pins, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal pins: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write pin tmp: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("rename pin file: %w", err)
	}

	return nil
}
