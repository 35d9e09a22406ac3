package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ScrapeRun is one row of run history: when a store was scraped, with what
// outcome, and how many records were persisted.
type ScrapeRun struct {
	ID           string     `json:"id" gorm:"primaryKey"`
	StoreDomain  string     `json:"store_domain" gorm:"not null;index"`
	Strategy     string     `json:"strategy"`
	Status       string     `json:"status"`
	ProductCount int        `json:"product_count"`
	Error        string     `json:"error"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at"`
}

func (ScrapeRun) TableName() string { return "scrape_runs" }

// Ledger records scrape runs in a relational table: sqlite for development,
// PostgreSQL when DATABASE_URL points at one.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(databaseURL string) (*Ledger, error) {
	var db *gorm.DB
	var err error

	if strings.HasPrefix(databaseURL, "sqlite://") {
		dbPath := strings.TrimPrefix(databaseURL, "sqlite://")
		db, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
	} else {
		db, err = gorm.Open(postgres.Open(databaseURL), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&ScrapeRun{}); err != nil {
		return nil, fmt.Errorf("failed to migrate scrape_runs: %w", err)
	}

	return &Ledger{db: db}, nil
}

// Start opens a run record in "running" state.
func (l *Ledger) Start(storeDomain string) (*ScrapeRun, error) {
	run := &ScrapeRun{
		ID:          uuid.New().String(),
		StoreDomain: storeDomain,
		Status:      "running",
		StartedAt:   time.Now().UTC(),
	}
	if err := l.db.Create(run).Error; err != nil {
		return nil, fmt.Errorf("failed to record run start: %w", err)
	}
	return run, nil
}

// Finish closes a run record with its final count and outcome.
func (l *Ledger) Finish(run *ScrapeRun, count int, runErr error) error {
	now := time.Now().UTC()
	run.FinishedAt = &now
	run.ProductCount = count
	if runErr != nil {
		run.Status = "failed"
		run.Error = runErr.Error()
	} else {
		run.Status = "completed"
	}
	return l.db.Save(run).Error
}

// List returns the most recent runs, newest first.
func (l *Ledger) List(limit int) ([]ScrapeRun, error) {
	var runs []ScrapeRun
	err := l.db.Order("started_at DESC").Limit(limit).Find(&runs).Error
	return runs, err
}

func (l *Ledger) Close() error {
	sqlDB, err := l.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
