// Package seeder generates fake login events for populating a test queue.
package seeder

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

// Publisher is the queue side the seeder writes to.
type Publisher interface {
	Publish(ctx context.Context, data []byte) error
}

// Seeder publishes generated login events according to a Profile.
type Seeder struct {
	profile Profile
	pub     Publisher
	faker   *gofakeit.Faker
	rng     *rand.Rand
}

// New creates a Seeder. A non-zero profile seed makes output reproducible.
func New(profile Profile, pub Publisher) *Seeder {
	seed := profile.Seed
	if seed == 0 {
		seed = uint64(gofakeit.Number(1, 1<<30))
	}
	return &Seeder{
		profile: profile,
		pub:     pub,
		faker:   gofakeit.New(int64(seed)),
		rng:     rand.New(rand.NewSource(int64(seed))),
	}
}

var deviceTypes = []string{"android", "ios", "web", "tv"}

// Event is the raw login payload shape the ETL expects on the queue.
type Event struct {
	RecordID   string `json:"record_id"`
	UserID     string `json:"user_id"`
	DeviceID   string `json:"device_id"`
	IP         string `json:"ip"`
	DeviceType string `json:"device_type"`
	Locale     string `json:"locale"`
	AppVersion string `json:"app_version"`
	CreatedAt  string `json:"created_at"`
}

// generate builds one fake login event.
func (s *Seeder) generate() Event {
	return Event{
		RecordID:   s.faker.UUID(),
		UserID:     s.faker.Username(),
		DeviceID:   s.faker.UUID(),
		IP:         s.faker.IPv4Address(),
		DeviceType: deviceTypes[s.rng.Intn(len(deviceTypes))],
		Locale:     s.faker.LanguageBCP(),
		AppVersion: s.faker.AppVersion(),
		CreatedAt:  s.faker.DateRange(time.Now().AddDate(0, -1, 0), time.Now()).Format("2006-01-02 15:04:05"),
	}
}

// Result summarizes what a Seed call published.
type Result struct {
	Published  int
	Duplicates int
	Malformed  int
}

// Seed publishes profile.Count messages, mixing in duplicates and malformed
// bodies per the configured ratios.
func (s *Seeder) Seed(ctx context.Context) (Result, error) {
	var res Result
	var previous []Event

	for i := 0; i < s.profile.Count; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		if s.rng.Float64() < s.profile.MalformedRatio {
			body := []byte(fmt.Sprintf(`{"record_id": %q,`, s.faker.UUID()))
			if err := s.pub.Publish(ctx, body); err != nil {
				return res, err
			}
			res.Published++
			res.Malformed++
			continue
		}

		event := s.generate()
		if len(previous) > 0 && s.rng.Float64() < s.profile.DuplicateRatio {
			event = previous[s.rng.Intn(len(previous))]
			res.Duplicates++
		} else {
			previous = append(previous, event)
		}

		body, err := json.Marshal(event)
		if err != nil {
			return res, fmt.Errorf("marshal event: %w", err)
		}
		if err := s.pub.Publish(ctx, body); err != nil {
			return res, err
		}
		res.Published++
	}

	return res, nil
}
