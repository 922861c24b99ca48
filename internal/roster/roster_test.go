package roster

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"rollcall-backend/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

const sampleList = `<?xml version="1.0" encoding="UTF-8"?>
<meps>
	<mep>
		<fullName> Anna ROSSI </fullName>
		<country>Italy</country>
		<politicalGroup>Group of the Progressive Alliance of Socialists and Democrats in the European Parliament</politicalGroup>
		<id>256971</id>
		<nationalPoliticalGroup>Partito Democratico</nationalPoliticalGroup>
	</mep>
	<mep>
		<fullName>Jan DE VRIES</fullName>
		<country>Netherlands</country>
		<politicalGroup>Group of the European People's Party (Christian Democrats)</politicalGroup>
		<id>197400</id>
		<nationalPoliticalGroup>Christen Democratisch Appèl</nationalPoliticalGroup>
	</mep>
</meps>`

func newTestSource(t *testing.T, handler http.HandlerFunc) (Source, *telemetry.Recorder) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	tel := &telemetry.Recorder{}
	cache, err := OpenCache("", tel)
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })

	return NewSource(Options{
		Url:     server.URL + "/meps/en/full-list/xml",
		TTL:     24 * time.Hour,
		Timeout: 2 * time.Second,
	}, cache, tel), tel
}

func TestParse(t *testing.T) {
	members, err := Parse([]byte(sampleList))
	require.NoError(t, err)
	require.Equal(t, []Member{
		{
			ID:                     256971,
			FullName:               "Anna ROSSI",
			Country:                "Italy",
			PoliticalGroup:         "Group of the Progressive Alliance of Socialists and Democrats in the European Parliament",
			NationalPoliticalGroup: "Partito Democratico",
		},
		{
			ID:                     197400,
			FullName:               "Jan DE VRIES",
			Country:                "Netherlands",
			PoliticalGroup:         "Group of the European People's Party (Christian Democrats)",
			NationalPoliticalGroup: "Christen Democratisch Appèl",
		},
	}, members)

	_, err = Parse([]byte("<html>maintenance</html>"))
	require.Error(t, err)
}

func TestLoadUsesCache(t *testing.T) {
	var calls atomic.Int32
	source, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("content-type", "application/xml")
		w.Write([]byte(sampleList))
	})

	for i := 0; i < 3; i++ {
		members, err := source.Load(context.Background())
		require.NoError(t, err)
		require.Len(t, members, 2)
	}
	require.Equal(t, int32(1), calls.Load())

	index := Index(func() []Member {
		members, _ := source.Load(context.Background())
		return members
	}())
	require.Equal(t, "Jan DE VRIES", index[197400].FullName)
}

func TestLoadFailureIsNotCached(t *testing.T) {
	var calls atomic.Int32
	source, tel := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(sampleList))
	})

	_, err := source.Load(context.Background())
	require.Error(t, err)
	require.Len(t, tel.Reports("broken", report_roster_fetch), 1)

	members, err := source.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, members, 2)
	require.Equal(t, int32(2), calls.Load())
}
