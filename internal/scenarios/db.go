package scenarios

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"odds-arb-calculator/internal/arb"
)

// ErrNotFound is returned when no scenario has the requested ID.
var ErrNotFound = errors.New("scenario not found")

// Scenario is a named set of calculator inputs. Only the inputs are stored;
// results are recomputed whenever a scenario is evaluated.
type Scenario struct {
	ID        string        `json:"id"`
	Name      string        `json:"name" validate:"required,max=80"`
	Notes     string        `json:"notes,omitempty" validate:"max=500"`
	Inputs    arb.RawInputs `json:"inputs"`
	CreatedAt time.Time     `json:"created_at"`
}

// Store handles scenario storage
type Store struct {
	db       *sql.DB
	validate *validator.Validate
}

// NewStore opens (creating if needed) the scenario database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, validate: validator.New()}, nil
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS scenarios (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		inputs TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_scenarios_name ON scenarios(name);
	`

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Save validates and stores a new scenario, assigning its ID and timestamp.
func (s *Store) Save(sc Scenario) (Scenario, error) {
	if err := s.validate.Struct(sc); err != nil {
		return Scenario{}, fmt.Errorf("validating scenario: %w", err)
	}

	inputs, err := json.Marshal(sc.Inputs)
	if err != nil {
		return Scenario{}, fmt.Errorf("encoding inputs: %w", err)
	}

	sc.ID = uuid.NewString()
	sc.CreatedAt = time.Now().UTC().Truncate(time.Second)

	_, err = s.db.Exec(`
		INSERT INTO scenarios (id, name, notes, inputs, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, sc.ID, sc.Name, sc.Notes, string(inputs), sc.CreatedAt)
	if err != nil {
		return Scenario{}, fmt.Errorf("inserting scenario: %w", err)
	}

	return sc, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScenario(row rowScanner) (Scenario, error) {
	var sc Scenario
	var inputs string
	if err := row.Scan(&sc.ID, &sc.Name, &sc.Notes, &inputs, &sc.CreatedAt); err != nil {
		return Scenario{}, err
	}
	if err := json.Unmarshal([]byte(inputs), &sc.Inputs); err != nil {
		return Scenario{}, fmt.Errorf("decoding inputs for %s: %w", sc.ID, err)
	}
	return sc, nil
}

// Get retrieves a scenario by ID
func (s *Store) Get(id string) (Scenario, error) {
	row := s.db.QueryRow(`
		SELECT id, name, notes, inputs, created_at
		FROM scenarios WHERE id = ?
	`, id)

	sc, err := scanScenario(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Scenario{}, fmt.Errorf("scenario %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Scenario{}, fmt.Errorf("scanning scenario: %w", err)
	}
	return sc, nil
}

// List retrieves all scenarios, newest first.
func (s *Store) List() ([]Scenario, error) {
	rows, err := s.db.Query(`
		SELECT id, name, notes, inputs, created_at
		FROM scenarios
		ORDER BY created_at DESC, name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying scenarios: %w", err)
	}
	defer rows.Close()

	var out []Scenario
	for rows.Next() {
		sc, err := scanScenario(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning scenario row: %w", err)
		}
		out = append(out, sc)
	}

	return out, rows.Err()
}

// Delete removes a scenario
func (s *Store) Delete(id string) error {
	res, err := s.db.Exec("DELETE FROM scenarios WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting scenario: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("scenario %s: %w", id, ErrNotFound)
	}
	return nil
}
