package snapshot

import (
	"fmt"
	"testing"

	"rollcall-backend/internal/votes"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestMembersDirectory(t *testing.T) {
	cache, _ := newLoadedCache(t, fixture())

	members := cache.Members()
	var names []string
	for _, m := range members {
		names = append(names, m.LastName)
	}
	require.Equal(t, []string{"de Vries", "Kovács", "Rossi"}, names)

	// affiliation comes from the most recent ballot
	anna, ok := cache.Member(1)
	require.True(t, ok)
	require.Equal(t, "RENEW", anna.Group.Code)
	require.Equal(t, int64(100003), anna.LastVoteID)
	require.Equal(t, 3, anna.VoteCount)

	// the historical ballot keeps the old affiliation
	rec, ok := cache.Vote(100001)
	require.True(t, ok)
	require.Equal(t, "SD", rec.Ballots[0].Member.Group.Code)

	_, ok = cache.Member(42)
	require.False(t, ok)
}

func TestSearchMembers(t *testing.T) {
	cache, _ := newLoadedCache(t, fixture())

	found := cache.SearchMembers("KOVACS")
	require.Len(t, found, 1)
	require.Equal(t, int64(3), found[0].ID)

	found = cache.SearchMembers("devries")
	require.Len(t, found, 1)
	require.Equal(t, int64(2), found[0].ID)

	require.Empty(t, cache.SearchMembers(" "))
	require.Empty(t, cache.SearchMembers("nobody"))
}

func TestSearchMembersConcurrently(t *testing.T) {
	cache, _ := newLoadedCache(t, fixture())

	var g errgroup.Group
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			for j := 0; j < 200; j++ {
				found := cache.SearchMembers("Kovács")
				if len(found) != 1 || found[0].ID != 3 {
					return fmt.Errorf("unexpected search result %v", found)
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

func TestMemberSummary(t *testing.T) {
	records := fixture()
	records[0].Ballots[0].Member.DateOfBirth = "1980-06-20"
	records[1].Ballots[0].Member.DateOfBirth = "1980-06-20"
	records[3].Ballots[0].Member.DateOfBirth = "1980-06-20"
	cache, _ := newLoadedCache(t, records)

	summary, ok := cache.MemberSummary(1)
	require.True(t, ok)
	require.Equal(t, votes.Tally{For: 1, Abstention: 1, DidNotVote: 3}, summary.Positions)
	require.Equal(t, int64(2), summary.Cast)
	require.Equal(t, int64(0), summary.Unknown)
	require.NotNil(t, summary.Age)
	require.Equal(t, 44, *summary.Age)

	summary, ok = cache.MemberSummary(3)
	require.True(t, ok)
	require.Equal(t, int64(1), summary.Unknown)
	require.Equal(t, int64(0), summary.Cast)
	require.Nil(t, summary.Age)

	_, ok = cache.MemberSummary(42)
	require.False(t, ok)
}
