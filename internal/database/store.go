// Package database implements the ledger's document store: five keyed
// collections held in memory and written to one JSON file as a whole
// snapshot after every mutation.
package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"go.uber.org/zap"

	apperrors "pocketledger/internal/errors"
	"pocketledger/internal/logger"
	"pocketledger/internal/models"
)

// snapshot is the on-disk layout. Records stay raw until read so one dirty
// record never prevents loading the rest.
type snapshot struct {
	Users      map[string]json.RawMessage `json:"users"`
	Entries    map[string]json.RawMessage `json:"entries"`
	Categories map[string]json.RawMessage `json:"categories"`
	Tags       map[string]json.RawMessage `json:"tags"`
	Budgets    map[string]json.RawMessage `json:"budgets"`
}

func emptySnapshot() snapshot {
	return snapshot{
		Users:      map[string]json.RawMessage{},
		Entries:    map[string]json.RawMessage{},
		Categories: map[string]json.RawMessage{},
		Tags:       map[string]json.RawMessage{},
		Budgets:    map[string]json.RawMessage{},
	}
}

// Store owns the dataset. It is meant for a single process; the mutex only
// keeps accidental concurrent calls from corrupting the maps.
type Store struct {
	mu   sync.Mutex
	path string
	data snapshot
	log  *zap.SugaredLogger
}

// Counts reports the number of records per collection.
type Counts struct {
	Users      int
	Entries    int
	Categories int
	Tags       int
	Budgets    int
}

// Open loads the snapshot at cfg.Path. A missing file starts empty; an
// unreadable one is logged and also starts empty without touching the
// file. Default categories are seeded and persisted when none exist.
func Open(cfg *Config) (*Store, error) {
	s := &Store{
		path: cfg.Path,
		data: emptySnapshot(),
		log:  logger.Named("store"),
	}
	s.load()

	s.mu.Lock()
	defer s.mu.Unlock()
	seeded, err := s.seedCategories()
	if err != nil {
		return nil, err
	}
	if seeded {
		if err := s.persist(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) load() {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Infow("no data file, starting empty", "path", s.path)
		return
	}
	if err != nil {
		s.log.Warnw("failed to read data file, starting empty", "path", s.path, "error", err)
		return
	}

	var loaded snapshot
	if err := json.Unmarshal(raw, &loaded); err != nil {
		s.log.Warnw("failed to parse data file, starting empty", "path", s.path, "error", err)
		return
	}
	for _, m := range []*map[string]json.RawMessage{&loaded.Users, &loaded.Entries, &loaded.Categories, &loaded.Tags, &loaded.Budgets} {
		if *m == nil {
			*m = map[string]json.RawMessage{}
		}
	}
	s.data = loaded
	s.log.Debugw("loaded data file", "path", s.path, "entries", len(loaded.Entries))
}

// collections returns the five maps. They are created once in Open and only
// ever cleared in place, so callers may hold on to them.
func (s *Store) collections() []map[string]json.RawMessage {
	return []map[string]json.RawMessage{s.data.Users, s.data.Entries, s.data.Categories, s.data.Tags, s.data.Budgets}
}

// persist rewrites the whole file. Caller holds s.mu.
func (s *Store) persist() error {
	out, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return apperrors.Wrap(apperrors.ErrPersistFailed, err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			s.log.Errorw("failed to create data directory", "path", s.path, "error", err)
			return apperrors.Wrap(apperrors.ErrPersistFailed, err)
		}
	}
	if err := os.WriteFile(s.path, out, 0o644); err != nil {
		s.log.Errorw("failed to write data file", "path", s.path, "error", err)
		return apperrors.Wrap(apperrors.ErrPersistFailed, err)
	}
	return nil
}

// Path returns the snapshot file location.
func (s *Store) Path() string { return s.path }

// Counts returns the size of every collection.
func (s *Store) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Counts{
		Users:      len(s.data.Users),
		Entries:    len(s.data.Entries),
		Categories: len(s.data.Categories),
		Tags:       len(s.data.Tags),
		Budgets:    len(s.data.Budgets),
	}
}

// ClearAllData empties every collection, persists, then re-seeds categories.
func (s *Store) ClearAllData() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.collections() {
		clear(m)
	}
	if err := s.persist(); err != nil {
		return err
	}
	if _, err := s.seedCategories(); err != nil {
		return err
	}
	return s.persist()
}

// ========== users ==========

// SaveUser inserts or replaces u and persists. On a write failure memory
// already holds u.
func (s *Store) SaveUser(u *models.User) error {
	return s.save(s.data.Users, u.ID, u.Record())
}

// GetUserByID returns the user with id.
func (s *Store) GetUserByID(id string) (*models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return decodeOne(s, s.data.Users, id, models.UserFromRecord)
}

// GetUserByEmail scans users in id order and returns the first exact match.
func (s *Store) GetUserByEmail(email string) (*models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range sortedKeys(s.data.Users) {
		var r models.UserRecord
		if err := json.Unmarshal(s.data.Users[id], &r); err != nil {
			continue
		}
		if r.Email != email {
			continue
		}
		if u, err := models.UserFromRecord(r); err == nil {
			return u, true
		}
	}
	return nil, false
}

// DeleteUser removes the user with every entry and budget it owns.
func (s *Store) DeleteUser(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.Users[id]; !ok {
		return false, nil
	}
	delete(s.data.Users, id)

	var entries, budgets int
	for key, raw := range s.data.Entries {
		if ownerOf(raw) == id {
			delete(s.data.Entries, key)
			entries++
		}
	}
	for key, raw := range s.data.Budgets {
		if ownerOf(raw) == id {
			delete(s.data.Budgets, key)
			budgets++
		}
	}
	s.log.Infow("deleted user", "user_id", id, "entries", entries, "budgets", budgets)
	return true, s.persist()
}

// ========== entries ==========

func (s *Store) SaveEntry(e *models.Entry) error {
	return s.save(s.data.Entries, e.ID, e.Record())
}

func (s *Store) GetEntryByID(id string) (*models.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return decodeOne(s, s.data.Entries, id, models.EntryFromRecord)
}

func (s *Store) DeleteEntry(id string) (bool, error) {
	return s.remove(s.data.Entries, id)
}

// ========== categories ==========

func (s *Store) SaveCategory(c *models.Category) error {
	return s.save(s.data.Categories, c.ID, c.Record())
}

func (s *Store) GetCategoryByID(id string) (*models.Category, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return decodeOne(s, s.data.Categories, id, models.CategoryFromRecord)
}

// GetAllCategories returns every category in id order.
func (s *Store) GetAllCategories() []*models.Category {
	return s.GetCategoriesByType("")
}

// GetCategoriesByType returns categories of t, or all of them when t is empty.
func (s *Store) GetCategoriesByType(t models.CategoryType) []*models.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return decodeAll(s, s.data.Categories, models.CategoryFromRecord, func(c *models.Category) bool {
		return t == "" || c.Type == t
	})
}

// DeleteCategory removes the category. Entries keep their embedded copy and
// budgets keep the dangling id.
func (s *Store) DeleteCategory(id string) (bool, error) {
	return s.remove(s.data.Categories, id)
}

// ========== tags ==========

func (s *Store) SaveTag(t *models.Tag) error {
	return s.save(s.data.Tags, t.ID, t.Record())
}

func (s *Store) GetTagByID(id string) (*models.Tag, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return decodeOne(s, s.data.Tags, id, models.TagFromRecord)
}

func (s *Store) GetAllTags() []*models.Tag {
	s.mu.Lock()
	defer s.mu.Unlock()
	return decodeAll(s, s.data.Tags, models.TagFromRecord, nil)
}

func (s *Store) DeleteTag(id string) (bool, error) {
	return s.remove(s.data.Tags, id)
}

// ========== budgets ==========

func (s *Store) SaveBudget(b *models.Budget) error {
	return s.save(s.data.Budgets, b.ID, b.Record())
}

func (s *Store) GetBudgetByID(id string) (*models.Budget, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return decodeOne(s, s.data.Budgets, id, models.BudgetFromRecord)
}

// GetBudgetsByUser returns the user's budgets in id order.
func (s *Store) GetBudgetsByUser(userID string) []*models.Budget {
	s.mu.Lock()
	defer s.mu.Unlock()
	return decodeAll(s, s.data.Budgets, models.BudgetFromRecord, func(b *models.Budget) bool {
		return b.UserID == userID
	})
}

func (s *Store) DeleteBudget(id string) (bool, error) {
	return s.remove(s.data.Budgets, id)
}

// ========== helpers ==========

func (s *Store) save(m map[string]json.RawMessage, id string, rec any) error {
	if id == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "record without id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := put(m, id, rec); err != nil {
		return apperrors.Wrap(apperrors.ErrPersistFailed, err)
	}
	return s.persist()
}

func (s *Store) remove(m map[string]json.RawMessage, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := m[id]; !ok {
		return false, nil
	}
	delete(m, id)
	return true, s.persist()
}

func put(m map[string]json.RawMessage, id string, rec any) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s: %w", id, err)
	}
	m[id] = raw
	return nil
}

func decodeOne[R any, T any](s *Store, m map[string]json.RawMessage, id string, build func(R) (*T, error)) (*T, bool) {
	raw, ok := m[id]
	if !ok {
		return nil, false
	}
	v, err := decode(raw, build)
	if err != nil {
		s.log.Warnw("skipping unreadable record", "id", id, "error", err)
		return nil, false
	}
	return v, true
}

func decodeAll[R any, T any](s *Store, m map[string]json.RawMessage, build func(R) (*T, error), keep func(*T) bool) []*T {
	out := make([]*T, 0, len(m))
	for _, id := range sortedKeys(m) {
		v, err := decode(m[id], build)
		if err != nil {
			s.log.Warnw("skipping unreadable record", "id", id, "error", err)
			continue
		}
		if keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func decode[R any, T any](raw json.RawMessage, build func(R) (*T, error)) (*T, error) {
	var r R
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}
	return build(r)
}

func ownerOf(raw json.RawMessage) string {
	var owner struct {
		UserID string `json:"user_id"`
	}
	if err := json.Unmarshal(raw, &owner); err != nil {
		return ""
	}
	return owner.UserID
}

func sortedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
