package commands

import (
	"fmt"
	"time"

	"rollcall-backend/internal/components/telemetry"
	"rollcall-backend/internal/roster"
	"rollcall-backend/internal/scrapers/howtheyvote"
)

type DatabaseConfig struct {
	File         string `json:"file"`
	AllowRebuild bool   `json:"allow_rebuild"`
}

type SourceConfig struct {
	BaseUrl        string `json:"base_url"`
	ListingSort    string `json:"listing_sort"`
	MaxPages       int    `json:"max_pages"`
	Order          string `json:"order"`
	FetchDelayMs   int    `json:"fetch_delay_ms"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	Retries        int    `json:"retries"`
	RetryWaitMs    int    `json:"retry_wait_ms"`
}

type ServerConfig struct {
	Address         string `json:"address"`
	PageSize        int    `json:"page_size"`
	DefaultMemberID int64  `json:"default_member_id"`
	// IngestSchedule is a cron spec, empty disables scheduled ingestion.
	IngestSchedule string `json:"ingest_schedule"`
}

type RosterConfig struct {
	// Url of the current member list, empty disables the roster.
	Url      string `json:"url"`
	CacheDir string `json:"cache_dir"`
	TTLHours int    `json:"ttl_hours"`
}

type Config struct {
	Database  DatabaseConfig   `json:"database"`
	Source    SourceConfig     `json:"source"`
	Server    ServerConfig     `json:"server"`
	Roster    RosterConfig     `json:"roster"`
	Telemetry telemetry.Config `json:"telemetry"`
}

func DefaultConfig() Config {
	return Config{
		Database: DatabaseConfig{
			File: "votes.db",
		},
		Source: SourceConfig{
			BaseUrl:        "https://howtheyvote.eu",
			ListingSort:    "newest",
			MaxPages:       69,
			Order:          "asc",
			FetchDelayMs:   10,
			TimeoutSeconds: 30,
			Retries:        3,
			RetryWaitMs:    500,
		},
		Server: ServerConfig{
			Address:         "127.0.0.1:8000",
			PageSize:        20,
			DefaultMemberID: 256971,
		},
		Roster: RosterConfig{
			Url:      "https://www.europarl.europa.eu/meps/en/full-list/xml",
			CacheDir: ".roster-cache",
			TTLHours: 24,
		},
	}
}

func (c SourceConfig) ClientOptions() howtheyvote.ClientOptions {
	return howtheyvote.ClientOptions{
		BaseUrl:     c.BaseUrl,
		ListingSort: c.ListingSort,
		FetchDelay:  time.Duration(c.FetchDelayMs) * time.Millisecond,
		Timeout:     time.Duration(c.TimeoutSeconds) * time.Second,
		Retries:     c.Retries,
		RetryWait:   time.Duration(c.RetryWaitMs) * time.Millisecond,
	}
}

func (c SourceConfig) ParsedOrder() (howtheyvote.Order, error) {
	order, ok := howtheyvote.ParseOrder(c.Order)
	if !ok {
		return order, fmt.Errorf("unknown order %q, expected asc or desc", c.Order)
	}
	return order, nil
}

func (c RosterConfig) Options() roster.Options {
	return roster.Options{
		Url:     c.Url,
		TTL:     time.Duration(c.TTLHours) * time.Hour,
		Timeout: 30 * time.Second,
	}
}
