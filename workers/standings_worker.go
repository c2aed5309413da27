package workers

import (
	"log"
	"time"

	"matchday-bets/models"
	"matchday-bets/services"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// StandingsWorker sweeps the standings rows flagged for recomputation so that
// group-rank reads mostly hit fresh data instead of recomputing inline.
type StandingsWorker struct {
	db        *gorm.DB
	interval  time.Duration
	scheduler gocron.Scheduler
}

func NewStandingsWorker(db *gorm.DB) *StandingsWorker {
	return &StandingsWorker{
		db:       db,
		interval: 1 * time.Minute,
	}
}

func (w *StandingsWorker) Start() error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(w.interval),
		gocron.NewTask(w.sweep),
	)
	if err != nil {
		return err
	}

	sched.Start()
	w.scheduler = sched
	log.Println("[STANDINGS] recompute worker started")
	return nil
}

func (w *StandingsWorker) Stop() {
	if w.scheduler != nil {
		_ = w.scheduler.Shutdown()
		log.Println("[STANDINGS] recompute worker stopped")
	}
}

func (w *StandingsWorker) sweep() {
	type stalePair struct {
		UserID  string
		GroupID string
	}

	var pairs []stalePair
	err := w.db.Model(&models.GroupPosition{}).
		Select("DISTINCT user_id, group_id").
		Where("need_recomputation = ?", true).
		Scan(&pairs).Error
	if err != nil {
		log.Printf("[STANDINGS] sweep query failed: %v", err)
		return
	}
	if len(pairs) == 0 {
		return
	}

	recomputed := 0
	for _, pair := range pairs {
		err := w.db.Transaction(func(tx *gorm.DB) error {
			return services.RecomputeGroupPositions(tx, pair.UserID, pair.GroupID)
		})
		if err != nil {
			log.Printf("[STANDINGS] recompute failed for user=%s group=%s: %v", pair.UserID, pair.GroupID, err)
			continue
		}
		recomputed++
	}

	log.Printf("[STANDINGS] recomputed %d stale group(s)", recomputed)
}
