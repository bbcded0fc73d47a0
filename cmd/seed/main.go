// Command seed prepares a development database: it creates the schema and
// fills it with sample links and randomized historical clicks so the
// dashboard has something to show.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/grafheim/linklytics/internal/analytics"
	"github.com/grafheim/linklytics/internal/clientinfo"
	"github.com/grafheim/linklytics/internal/link"
	"github.com/grafheim/linklytics/internal/store"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jaevor/go-nanoid"
	"go.uber.org/zap"
)

const schema = `
CREATE TABLE IF NOT EXISTS links (
	id         TEXT PRIMARY KEY,
	short_code TEXT NOT NULL UNIQUE,
	target_url TEXT NOT NULL,
	expires_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS clicks (
	id             BIGSERIAL PRIMARY KEY,
	link_id        TEXT NOT NULL REFERENCES links (id),
	occurred_at    TIMESTAMPTZ NOT NULL,
	client_ip      TEXT NOT NULL,
	user_agent_raw TEXT NOT NULL DEFAULT '',
	browser        TEXT NOT NULL DEFAULT '',
	os             TEXT NOT NULL DEFAULT '',
	device_type    TEXT NOT NULL DEFAULT 'Other',
	referer        TEXT NOT NULL DEFAULT '',
	country        TEXT NOT NULL DEFAULT '',
	region         TEXT NOT NULL DEFAULT '',
	city           TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_clicks_link_id ON clicks (link_id);
CREATE INDEX IF NOT EXISTS idx_clicks_occurred_at ON clicks (occurred_at);
`

var sampleTargets = []string{
	"https://go.dev/blog",
	"https://www.postgresql.org/docs/current/",
	"https://redis.io/docs/latest/",
}

var sampleDevices = []clientinfo.Device{
	clientinfo.DeviceDesktop,
	clientinfo.DeviceMobile,
	clientinfo.DeviceTablet,
	clientinfo.DeviceOther,
}

var sampleBrowsers = []string{"Chrome", "Firefox", "Safari", "Edge"}

func main() {
	logger, _ := zap.NewDevelopment()
	defer func() { _ = logger.Sync() }()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		databaseURL = "postgres://localhost:5432/linklytics"
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Fatal("failed to connect", zap.Error(err))
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, schema); err != nil {
		logger.Fatal("failed to create schema", zap.Error(err))
	}

	generator, err := nanoid.Standard(8)
	if err != nil {
		logger.Fatal("failed to build code generator", zap.Error(err))
	}

	links := store.NewPostgresLinkStore(pool)
	clicks := store.NewPostgresClickStore(pool)
	now := time.Now()
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)

	for _, target := range sampleTargets {
		l := &link.Link{
			ID:        uuid.NewString(),
			ShortCode: generator(),
			TargetURL: target,
			CreatedAt: yearStart,
		}

		if err := links.Save(ctx, l); err != nil {
			logger.Fatal("failed to save link", zap.String("target", target), zap.Error(err))
		}

		count := 5 + rand.Intn(11)
		for i := 0; i < count; i++ {
			event := &analytics.ClickEvent{
				LinkID:     l.ID,
				OccurredAt: randomTime(yearStart, now),
				ClientIP:   fmt.Sprintf("203.0.113.%d", rand.Intn(255)),
				Browser:    sampleBrowsers[rand.Intn(len(sampleBrowsers))],
				OS:         "Linux",
				DeviceType: sampleDevices[rand.Intn(len(sampleDevices))],
			}

			if err := clicks.AppendClick(ctx, event); err != nil {
				logger.Fatal("failed to append click", zap.Error(err))
			}
		}

		logger.Info("seeded link",
			zap.String("shortCode", l.ShortCode),
			zap.String("target", target),
			zap.Int("clicks", count),
		)
	}
}

func randomTime(from, to time.Time) time.Time {
	span := to.Sub(from)

	return from.Add(time.Duration(rand.Int63n(int64(span))))
}
