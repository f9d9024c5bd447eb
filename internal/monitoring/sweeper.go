package monitoring

import (
	"database/sql"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/auric/jewelry-be/internal/uploads"
)

// Upload files younger than this are never swept; they may belong to an
// in-flight request whose row has not been written yet.
const sweepGracePeriod = time.Hour

// Sweeper periodically removes upload files that no domain row references.
// The replace and delete flows unlink eagerly; the sweeper catches files
// leaked by a crash between file write and row insert.
type Sweeper struct {
	db       *sql.DB
	files    *uploads.Store
	schedule cron.Schedule
	done     chan bool
}

// NewSweeper creates a sweeper driven by a standard cron expression.
func NewSweeper(db *sql.DB, files *uploads.Store, cronExpr string) (*Sweeper, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, err
	}
	return &Sweeper{
		db:       db,
		files:    files,
		schedule: schedule,
		done:     make(chan bool),
	}, nil
}

// Run starts the sweep loop. It blocks until Stop is called.
func (s *Sweeper) Run() {
	log.Info().Msg("Starting upload sweeper")
	for {
		next := s.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-s.done:
			timer.Stop()
			log.Info().Msg("Stopping upload sweeper")
			return
		case <-timer.C:
			s.Sweep()
		}
	}
}

// Stop halts the sweep loop.
func (s *Sweeper) Stop() {
	s.done <- true
}

// Sweep removes unreferenced upload files in every category.
func (s *Sweeper) Sweep() {
	for cat, query := range map[uploads.Category]string{
		uploads.CategoryProducts: "SELECT image FROM products WHERE image IS NOT NULL AND image != ''",
		uploads.CategoryDesigns:  "SELECT reference_image FROM custom_designs WHERE reference_image IS NOT NULL AND reference_image != ''",
	} {
		s.sweepCategory(cat, query)
	}
}

func (s *Sweeper) sweepCategory(cat uploads.Category, query string) {
	referenced, err := s.referencedFilenames(query)
	if err != nil {
		log.Error().Err(err).Str("category", string(cat)).Msg("Sweeper: failed to load referenced filenames")
		return
	}

	onDisk, err := s.files.ListOlderThan(cat, sweepGracePeriod)
	if err != nil {
		log.Error().Err(err).Str("category", string(cat)).Msg("Sweeper: failed to list stored files")
		return
	}

	removed := 0
	for _, name := range onDisk {
		if _, ok := referenced[name]; ok {
			continue
		}
		if err := s.files.Remove(cat, name); err != nil {
			log.Warn().Err(err).Str("filename", name).Msg("Sweeper: failed to remove orphaned file")
			continue
		}
		removed++
	}
	if removed > 0 {
		log.Info().Str("category", string(cat)).Int("removed", removed).Msg("Sweeper: removed orphaned upload files")
	}
}

func (s *Sweeper) referencedFilenames(query string) (map[string]struct{}, error) {
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	referenced := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		referenced[name] = struct{}{}
	}
	return referenced, rows.Err()
}
