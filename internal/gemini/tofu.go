package gemini

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// TrustRecord is the remembered certificate of one host:port.
type TrustRecord struct {
	Fingerprint string    `json:"fingerprint"`
	FirstSeen   time.Time `json:"first_seen"`
	LastSeen    time.Time `json:"last_seen"`
}

// Decision is the outcome of a successful trust check.
type Decision int

const (
	DecisionNew Decision = iota + 1
	DecisionKnown
)

func (d Decision) String() string {
	switch d {
	case DecisionNew:
		return "new"
	case DecisionKnown:
		return "known"
	default:
		return "invalid"
	}
}

// Fingerprint is the hex SHA-256 digest of a DER certificate.
func Fingerprint(der []byte) string {
	sum := sha256.Sum256(der)
	return hex.EncodeToString(sum[:])
}

// Decide applies trust-on-first-use to hosts without modifying it. On success
// it returns the record that should be stored under key. On a fingerprint
// mismatch it returns *CertificateChangedError and the stored record must be
// left as it is.
func Decide(hosts map[string]TrustRecord, key, fingerprint string, now time.Time) (TrustRecord, Decision, error) {
	stored, ok := hosts[key]
	if !ok {
		return TrustRecord{Fingerprint: fingerprint, FirstSeen: now, LastSeen: now}, DecisionNew, nil
	}
	if stored.Fingerprint != fingerprint {
		return stored, 0, &CertificateChangedError{
			Host:           key,
			OldFingerprint: stored.Fingerprint,
			NewFingerprint: fingerprint,
		}
	}
	stored.LastSeen = now
	return stored, DecisionKnown, nil
}

type trustFile struct {
	Hosts map[string]TrustRecord `json:"hosts"`
}

// TrustStore is the persistent host:port -> certificate map. It is safe for
// concurrent use; a check and the snapshot written after it happen under one
// lock, so two first-time handshakes to the same host cannot both win.
type TrustStore struct {
	mu    sync.Mutex
	path  string
	hosts map[string]TrustRecord
	now   func() time.Time
	log   zerolog.Logger
}

// LoadTrustStore reads the store at path. A missing file gives an empty store.
// A file that cannot be decoded is renamed to <path>.corrupt and the store
// starts empty.
func LoadTrustStore(path string, log zerolog.Logger) (*TrustStore, error) {
	s := &TrustStore{
		path:  path,
		hosts: make(map[string]TrustRecord),
		now:   time.Now,
		log:   log,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read known hosts: %w", err)
	}

	var f trustFile
	if err := json.Unmarshal(data, &f); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("known hosts file is corrupt, starting with an empty store")
		if rerr := os.Rename(path, path+".corrupt"); rerr != nil {
			log.Warn().Err(rerr).Msg("could not move corrupt known hosts file aside")
		}
		return s, nil
	}
	for k, v := range f.Hosts {
		s.hosts[k] = v
	}
	return s, nil
}

// Path returns the file backing the store.
func (s *TrustStore) Path() string { return s.path }

// Verify checks fingerprint against the record for key, remembering it when
// the key is new. Nothing is written when the fingerprint does not match.
func (s *TrustStore) Verify(key, fingerprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, decision, err := Decide(s.hosts, key, fingerprint, s.now())
	if err != nil {
		return err
	}
	s.hosts[key] = rec
	if decision == DecisionNew {
		s.log.Info().Str("host", key).Str("fingerprint", fingerprint).Msg("tofu: remembering new certificate")
	}
	if err := s.save(); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("could not save known hosts")
	}
	return nil
}

// Lookup returns the record stored for key.
func (s *TrustStore) Lookup(key string) (TrustRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.hosts[key]
	return rec, ok
}

// Hosts returns the known keys in sorted order.
func (s *TrustStore) Hosts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.hosts))
	for k := range s.hosts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Forget drops the record for key so the next handshake is trusted as new.
// It reports whether a record existed.
func (s *TrustStore) Forget(key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hosts[key]; !ok {
		return false, nil
	}
	delete(s.hosts, key)
	if err := s.save(); err != nil {
		return true, fmt.Errorf("save known hosts: %w", err)
	}
	return true, nil
}

// save writes the whole map to a temporary file and renames it over the
// store. Callers hold s.mu.
func (s *TrustStore) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(trustFile{Hosts: s.hosts}, "", "  ")
	if err != nil {
		return err
	}

	tmpFile := s.path + ".tmp"
	file, err := os.OpenFile(tmpFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if _, err = file.Write(data); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}
	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}
	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}
	return os.Rename(tmpFile, s.path)
}
