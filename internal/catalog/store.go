// Package catalog keeps named automata in a SQLite database so they can be
// referenced by name instead of by file.
package catalog

import (
	"database/sql"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/s4ke/moar/pkg/moar"
)

// ErrNotFound is returned when no automaton has the requested name.
var ErrNotFound = errors.New("automaton not found")

// ErrInvalidName is returned for names outside [A-Za-z0-9_.-]+.
var ErrInvalidName = errors.New("invalid automaton name")

// Entry is one stored automaton.
type Entry struct {
	Name        string
	Regex       string
	Description []byte // JSON, as produced by moar.Pattern.Marshal
	States      int
	Variables   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Pattern loads the stored automaton.
func (e *Entry) Pattern() (*moar.Pattern, error) {
	return moar.Load(e.Description)
}

// Store provides SQLite-backed persistence for automata.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and migrates it.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	glog.V(1).Infof("catalog: opened %s", path)
	return &Store{db: db}, nil
}

// New returns a Store bound to an existing, migrated database handle.
func New(db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores p under name, replacing any automaton already stored there.
func (s *Store) Put(name string, p *moar.Pattern) error {
	if err := validName(name); err != nil {
		return errors.WithMessage(err, "put")
	}
	if p == nil {
		return errors.New("put: pattern is nil")
	}
	data, err := p.Marshal()
	if err != nil {
		return errors.Wrap(err, "put: marshal")
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.db.Exec(`
		INSERT INTO automata (name, regex, description, states, variables, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			regex = excluded.regex,
			description = excluded.description,
			states = excluded.states,
			variables = excluded.variables,
			updated_at = excluded.updated_at`,
		name, p.Regex(), data, p.Graph().NumStates(), len(p.Variables()), now, now)
	if err != nil {
		return errors.Wrap(err, "put: upsert")
	}
	glog.V(2).Infof("catalog: stored %q (%d bytes)", name, len(data))
	return nil
}

// Get returns the entry stored under name.
func (s *Store) Get(name string) (*Entry, error) {
	row := s.db.QueryRow(`
		SELECT name, regex, description, states, variables, created_at, updated_at
		FROM automata WHERE name = ?`, name)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(ErrNotFound, "get %q", name)
	}
	if err != nil {
		return nil, errors.WithMessagef(err, "get %q", name)
	}
	return e, nil
}

// List returns every entry ordered by name. Descriptions are not loaded.
func (s *Store) List() ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT name, regex, NULL, states, variables, created_at, updated_at
		FROM automata ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "list: query")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, errors.WithMessage(err, "list")
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list: iterate")
	}
	return entries, nil
}

// Delete removes the automaton stored under name.
func (s *Store) Delete(name string) error {
	res, err := s.db.Exec(`DELETE FROM automata WHERE name = ?`, name)
	if err != nil {
		return errors.Wrap(err, "delete")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "delete: rows affected")
	}
	if n == 0 {
		return errors.Wrapf(ErrNotFound, "delete %q", name)
	}
	glog.V(2).Infof("catalog: deleted %q", name)
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*Entry, error) {
	var e Entry
	var created, updated string
	if err := row.Scan(&e.Name, &e.Regex, &e.Description, &e.States, &e.Variables, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, errors.Wrap(err, "scan")
	}
	var err error
	if e.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, errors.Wrap(err, "parse created_at")
	}
	if e.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return nil, errors.Wrap(err, "parse updated_at")
	}
	return &e, nil
}

func validName(name string) error {
	if name == "" {
		return errors.Wrap(ErrInvalidName, "empty")
	}
	for _, r := range name {
		switch {
		case 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z', '0' <= r && r <= '9', r == '_', r == '.', r == '-':
		default:
			return errors.Wrapf(ErrInvalidName, "%q", name)
		}
	}
	return nil
}
