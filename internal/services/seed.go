// Package services – demo seeding
//
// SeedDemo populates an empty store with a pair of demo users and a few open
// contracts so the explore list has content on first boot. It is an explicit,
// idempotent routine invoked once at process start: the gate is a store check
// (any existing user means "already seeded"), not an in-memory flag, so
// restarts and multiple replicas sharing one database are safe.
package services

import (
	"context"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/pactly/go-pact-backend/internal/domain"
	"github.com/pactly/go-pact-backend/internal/repo"
)

// SeedDemo seeds demo users and open contracts when the store is empty.
// Returns true when seeding ran.
func SeedDemo(ctx context.Context, db *gorm.DB) (bool, error) {
	n, err := repo.CountUsers(ctx, db)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	type seedContract struct {
		title, topic, desc, stakes string
		freq, days                 int
	}
	seeds := []struct {
		name      string
		contracts []seedContract
	}{
		{
			name: "Demo Dana",
			contracts: []seedContract{
				{"Run three times a week", "fitness", "Couch to 5k, week by week.", "social", 3, 30},
				{"Read 20 pages a day", "learning", "Working through a backlog of paperbacks.", "social", 7, 60},
			},
		},
		{
			name: "Demo Miguel",
			contracts: []seedContract{
				{"Daily meditation", "mindfulness", "Ten minutes every morning.", "high", 7, 21},
			},
		},
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, s := range seeds {
			user, err := repo.CreateUser(ctx, tx, s.name, nil, nil)
			if err != nil {
				return err
			}
			for _, c := range s.contracts {
				start := dayKey(user.CreatedAt)
				_, err := repo.CreateContract(ctx, tx, &domain.Contract{
					OwnerID:          user.ID,
					Title:            c.title,
					TopicCategory:    c.topic,
					Description:      c.desc,
					FrequencyPerWeek: c.freq,
					DurationDays:     c.days,
					StakesLevel:      c.stakes,
					StartDate:        &start,
				})
				if err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	log.Info().Msg("seeded demo users and contracts")
	return true, nil
}
