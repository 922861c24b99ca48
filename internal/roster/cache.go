package roster

import (
	"fmt"
	"strings"

	"rollcall-backend/internal/components/telemetry"

	"github.com/dgraph-io/badger/v4"
)

type badgerLogger struct {
	tel telemetry.API
}

func (l badgerLogger) Errorf(format string, args ...any) {
	l.tel.ReportBroken("badger", strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l badgerLogger) Warningf(format string, args ...any) {
	l.tel.ReportWarning("badger", strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l badgerLogger) Infof(format string, args ...any) {
	l.tel.ReportDebug("badger", strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l badgerLogger) Debugf(format string, args ...any) {
	l.tel.ReportDebug("badger", strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// OpenCache opens the badger database backing the roster cache, an empty dir
// keeps everything in memory.
func OpenCache(dir string, tel telemetry.API) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir).
		WithLogger(badgerLogger{tel: telemetry.NewScopedAPI("roster", tel)}).
		// the default INFO logging is a bit verbose
		WithLoggingLevel(badger.WARNING)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open roster cache: %w", err)
	}
	return db, nil
}
