package database

import (
	"embed"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"moul.io/zapgorm2"

	"github.com/alanbriolat/video-slides"
	"github.com/alanbriolat/video-slides/internal/session"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Database is the SQLite history store.
type Database struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewDatabase(path string) (*Database, error) {
	logger := zapgorm2.New(zap.L().Named("gorm"))
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger})
	if err != nil {
		return nil, err
	}
	return &Database{db: db, log: zap.S().Named("database")}, nil
}

// Open creates the database at path if necessary and migrates it to the latest schema.
func Open(path string) (*Database, error) {
	d, err := NewDatabase(path)
	if err != nil {
		return nil, err
	}
	if err := d.Migrate(); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

func (d *Database) Migrate() error {
	d.log.Info("running database migrations")
	fs, err := iofs.New(embedMigrations, "migrations")
	if err != nil {
		return err
	}
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	driver, err := sqlite3.WithInstance(sqlDB, &sqlite3.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", fs, "sqlite3", driver)
	if err != nil {
		return err
	}
	err = m.Up()
	switch err {
	case nil:
		d.log.Info("database migration complete")
	case migrate.ErrNoChange:
		d.log.Debug("no database migration required")
	default:
		return err
	}
	return nil
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ListSubmissions returns every record, oldest submission first.
func (d *Database) ListSubmissions() ([]session.Record, error) {
	var rows []Submission
	if err := d.db.Order("submitted_at").Find(&rows).Error; err != nil {
		return nil, err
	}
	records := make([]session.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.Record())
	}
	return records, nil
}

// WriteSubmission inserts or replaces the record with the same ID.
func (d *Database) WriteSubmission(record *session.Record) error {
	row := NewSubmission(record)
	return d.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
}

type Submission struct {
	ID          string `gorm:"primaryKey"`
	Generation  uint64
	Link        string
	Identifier  string
	Status      string
	Error       string
	Superseded  bool
	SubmittedAt time.Time
	FinishedAt  time.Time
}

func (Submission) TableName() string {
	return "submission"
}

func NewSubmission(r *session.Record) Submission {
	return Submission{
		ID:          string(r.ID),
		Generation:  r.Generation,
		Link:        r.Link,
		Identifier:  string(r.Identifier),
		Status:      string(r.Status),
		Error:       r.Error,
		Superseded:  r.Superseded,
		SubmittedAt: r.SubmittedAt,
		FinishedAt:  r.FinishedAt,
	}
}

func (s Submission) Record() session.Record {
	return session.Record{
		ID:          session.SubmissionID(s.ID),
		Generation:  s.Generation,
		Link:        s.Link,
		Identifier:  video_slides.Identifier(s.Identifier),
		Status:      session.Status(s.Status),
		Error:       s.Error,
		Superseded:  s.Superseded,
		SubmittedAt: s.SubmittedAt,
		FinishedAt:  s.FinishedAt,
	}
}
