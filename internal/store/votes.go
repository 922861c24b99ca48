package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"rollcall-backend/internal/components/db"
	"rollcall-backend/internal/votes"
)

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func optionalString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	out := s.String
	return &out
}

// InsertVote stores a record with all of its children in one transaction.
// A record whose id is already stored is left untouched, the returned bool
// reports whether anything was inserted.
func (s Store) InsertVote(ctx context.Context, rec votes.Record) (bool, error) {
	tx, discard, commit, err := s.makeTx(ctx)
	if err != nil {
		s.tel.ReportBroken(report_db_query, fmt.Errorf("make tx: %w", err))
		return false, err
	}
	defer discard()

	count, err := tx.VoteExists(ctx, rec.ID)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "VoteExists", rec.ID)
		return false, err
	}
	if count > 0 {
		s.tel.ReportDebug("vote already stored", rec.ID)
		return false, nil
	}

	raw := string(rec.Raw)
	if len(rec.Raw) == 0 {
		encoded, err := json.Marshal(rec)
		if err != nil {
			s.tel.ReportBroken(report_insert_vote, fmt.Errorf("encode raw payload: %w", err), rec.ID)
			return false, err
		}
		raw = string(encoded)
	}

	err = tx.InsertVote(ctx, db.InsertVoteParams{
		ID:           rec.ID,
		Timestamp:    rec.Timestamp,
		DisplayTitle: rec.DisplayTitle,
		Description:  nullString(rec.Description),
		Reference:    nullString(rec.Reference),
		GeoAreas:     rec.GeoAreaLabels,
		Result:       rec.Result,
		RawJson:      raw,
	})
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "InsertVote", rec.ID)
		return false, err
	}

	for i, area := range rec.GeoAreas {
		err = tx.InsertVoteGeoArea(ctx, db.InsertVoteGeoAreaParams{
			VoteID: rec.ID,
			Idx:    int64(i),
			Code:   area.Code,
			Label:  area.Label,
		})
		if err != nil {
			s.tel.ReportBroken(report_db_query, err, "InsertVoteGeoArea", rec.ID, area)
			return false, err
		}
	}

	err = insertStats(ctx, tx, rec.ID, rec.Stats)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "insertStats", rec.ID)
		return false, err
	}

	for _, ballot := range rec.Ballots {
		m := ballot.Member
		dateOfBirth := sql.NullString{String: m.DateOfBirth, Valid: m.DateOfBirth != ""}
		err = tx.InsertMemberVote(ctx, db.InsertMemberVoteParams{
			VoteID:           rec.ID,
			MemberID:         m.ID,
			FirstName:        m.FirstName,
			LastName:         m.LastName,
			DateOfBirth:      dateOfBirth,
			CountryCode:      m.Country.Code,
			CountryIsoAlpha2: m.Country.IsoAlpha2,
			CountryLabel:     m.Country.Label,
			GroupCode:        m.Group.Code,
			GroupLabel:       m.Group.Label,
			GroupShortLabel:  m.Group.ShortLabel,
			PhotoUrl:         m.PhotoUrl,
			ThumbUrl:         m.ThumbUrl,
			Email:            m.Email,
			Facebook:         m.Facebook,
			Twitter:          m.Twitter,
			Position:         string(ballot.Position),
		})
		if err != nil {
			s.tel.ReportBroken(report_db_query, err, "InsertMemberVote", rec.ID, m.ID)
			return false, err
		}
	}

	err = commit()
	if err != nil {
		s.tel.ReportBroken(report_db_query, fmt.Errorf("commit: %w", err), rec.ID)
		return false, err
	}
	return true, nil
}

func insertStats(ctx context.Context, tx *db.Queries, voteId int64, stats votes.Stats) error {
	statsId, err := tx.InsertStats(ctx, db.InsertStatsParams{
		VoteID:          voteId,
		HasTotal:        stats.HasTotal,
		TotalFor:        stats.Total.For,
		TotalAgainst:    stats.Total.Against,
		TotalAbstention: stats.Total.Abstention,
		TotalDidNotVote: stats.Total.DidNotVote,
	})
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}

	for _, g := range stats.ByGroup {
		err = tx.InsertStatsByGroup(ctx, db.InsertStatsByGroupParams{
			StatsID:         statsId,
			GroupCode:       g.Group.Key(),
			GroupLabel:      g.Group.Label,
			GroupShortLabel: g.Group.ShortLabel,
			CountFor:        g.Tally.For,
			CountAgainst:    g.Tally.Against,
			CountAbstention: g.Tally.Abstention,
			CountDidNotVote: g.Tally.DidNotVote,
			Derived:         g.Derived,
		})
		if err != nil {
			return fmt.Errorf("group breakdown %s: %w", g.Group.Key(), err)
		}
	}

	for _, c := range stats.ByCountry {
		err = tx.InsertStatsByCountry(ctx, db.InsertStatsByCountryParams{
			StatsID:          statsId,
			CountryCode:      c.Country.Key(),
			CountryIsoAlpha2: c.Country.IsoAlpha2,
			CountryLabel:     c.Country.Label,
			CountFor:         c.Tally.For,
			CountAgainst:     c.Tally.Against,
			CountAbstention:  c.Tally.Abstention,
			CountDidNotVote:  c.Tally.DidNotVote,
			Derived:          c.Derived,
		})
		if err != nil {
			return fmt.Errorf("country breakdown %s: %w", c.Country.Key(), err)
		}
	}

	return nil
}

func (s Store) VoteExists(ctx context.Context, id int64) (bool, error) {
	count, err := s.db.VoteExists(ctx, id)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "VoteExists", id)
		return false, err
	}
	return count > 0, nil
}

// KnownVoteIds returns the set of stored vote ids.
func (s Store) KnownVoteIds(ctx context.Context) (map[int64]struct{}, error) {
	ids, err := s.db.ListVoteIds(ctx)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "ListVoteIds")
		return nil, err
	}
	out := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}

func (s Store) CountVotes(ctx context.Context) (int64, error) {
	count, err := s.db.CountVotes(ctx)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "CountVotes")
		return 0, err
	}
	return count, nil
}

// DeleteVote removes a vote and, through the foreign keys, all of its
// children. The next ingestion run fetches it again.
func (s Store) DeleteVote(ctx context.Context, id int64) error {
	affected, err := s.db.DeleteVote(ctx, id)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "DeleteVote", id)
		return err
	}
	if affected == 0 {
		return fmt.Errorf("delete vote %d: %w", id, ErrVoteNotFound)
	}
	return nil
}

// LoadVotes reads every stored vote with its children, ordered by id.
func (s Store) LoadVotes(ctx context.Context) ([]votes.Record, error) {
	rows, err := s.db.ListVotes(ctx)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "ListVotes")
		return nil, err
	}

	records := make([]votes.Record, len(rows))
	byId := make(map[int64]*votes.Record, len(rows))
	for i, row := range rows {
		records[i] = votes.Record{
			ID:            row.ID,
			Timestamp:     row.Timestamp,
			Time:          votes.ParseTimestamp(row.Timestamp),
			DisplayTitle:  row.DisplayTitle,
			Description:   optionalString(row.Description),
			Reference:     optionalString(row.Reference),
			GeoAreas:      []votes.GeoArea{},
			GeoAreaLabels: row.GeoAreas,
			Result:        row.Result,
			Ballots:       []votes.Ballot{},
			Raw:           json.RawMessage(row.RawJson),
		}
		byId[row.ID] = &records[i]
	}

	areas, err := s.db.ListVoteGeoAreas(ctx)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "ListVoteGeoAreas")
		return nil, err
	}
	for _, area := range areas {
		rec, ok := byId[area.VoteID]
		if !ok {
			continue
		}
		rec.GeoAreas = append(rec.GeoAreas, votes.GeoArea{Code: area.Code, Label: area.Label})
	}

	err = s.loadStats(ctx, byId)
	if err != nil {
		return nil, err
	}

	ballots, err := s.db.ListMemberVotes(ctx)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "ListMemberVotes")
		return nil, err
	}
	for _, b := range ballots {
		rec, ok := byId[b.VoteID]
		if !ok {
			continue
		}
		rec.Ballots = append(rec.Ballots, votes.Ballot{
			Member: votes.Member{
				ID:          b.MemberID,
				FirstName:   b.FirstName,
				LastName:    b.LastName,
				DateOfBirth: b.DateOfBirth.String,
				Country: votes.Country{
					Code:      b.CountryCode,
					IsoAlpha2: b.CountryIsoAlpha2,
					Label:     b.CountryLabel,
				},
				Group: votes.Group{
					Code:       b.GroupCode,
					Label:      b.GroupLabel,
					ShortLabel: b.GroupShortLabel,
				},
				PhotoUrl: b.PhotoUrl,
				ThumbUrl: b.ThumbUrl,
				Email:    b.Email,
				Facebook: b.Facebook,
				Twitter:  b.Twitter,
			},
			Position: votes.ParsePosition(b.Position),
		})
	}

	s.tel.ReportCount("votes.loaded", int64(len(records)))
	return records, nil
}

func (s Store) loadStats(ctx context.Context, byId map[int64]*votes.Record) error {
	stats, err := s.db.ListStats(ctx)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "ListStats")
		return err
	}
	byStatsId := make(map[int64]*votes.Record, len(stats))
	for _, st := range stats {
		rec, ok := byId[st.VoteID]
		if !ok {
			continue
		}
		rec.Stats = votes.Stats{
			HasTotal: st.HasTotal,
			Total: votes.Tally{
				For:        st.TotalFor,
				Against:    st.TotalAgainst,
				Abstention: st.TotalAbstention,
				DidNotVote: st.TotalDidNotVote,
			},
		}
		byStatsId[st.ID] = rec
	}

	groups, err := s.db.ListStatsByGroup(ctx)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "ListStatsByGroup")
		return err
	}
	for _, g := range groups {
		rec, ok := byStatsId[g.StatsID]
		if !ok {
			continue
		}
		rec.Stats.ByGroup = append(rec.Stats.ByGroup, votes.GroupBreakdown{
			Group: votes.Group{
				Code:       g.GroupCode,
				Label:      g.GroupLabel,
				ShortLabel: g.GroupShortLabel,
			},
			Tally: votes.Tally{
				For:        g.CountFor,
				Against:    g.CountAgainst,
				Abstention: g.CountAbstention,
				DidNotVote: g.CountDidNotVote,
			},
			Derived: g.Derived,
		})
	}

	countries, err := s.db.ListStatsByCountry(ctx)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "ListStatsByCountry")
		return err
	}
	for _, c := range countries {
		rec, ok := byStatsId[c.StatsID]
		if !ok {
			continue
		}
		rec.Stats.ByCountry = append(rec.Stats.ByCountry, votes.CountryBreakdown{
			Country: votes.Country{
				Code:      c.CountryCode,
				IsoAlpha2: c.CountryIsoAlpha2,
				Label:     c.CountryLabel,
			},
			Tally: votes.Tally{
				For:        c.CountFor,
				Against:    c.CountAgainst,
				Abstention: c.CountAbstention,
				DidNotVote: c.CountDidNotVote,
			},
			Derived: c.Derived,
		})
	}

	return nil
}
