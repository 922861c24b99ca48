package commands

import (
	"fmt"

	"rollcall-backend/internal/components/chrono"
	"rollcall-backend/internal/snapshot"
	"rollcall-backend/internal/votes"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	membersSearch *string
	membersId     *int64
)

func init() {
	membersSearch = membersCmd.Flags().String("search", "", "Only members whose last name contains this text.")
	membersId = membersCmd.Flags().Int64("id", 0, "Show the voting summary of a single member.")
	rootCmd.AddCommand(membersCmd)
}

var membersCmd = &cobra.Command{
	Use:   "members [--search <last name>] [--id <member id>]",
	Short: "Lists the members that appear on stored votes.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer s.Close()

		cache := snapshot.NewCache(s, chrono.NewStandardTime(), tel)
		err = cache.Load(cmd.Context())
		if err != nil {
			return err
		}

		if *membersId != 0 {
			summary, ok := cache.MemberSummary(*membersId)
			if !ok {
				return fmt.Errorf("member %d not found", *membersId)
			}
			printSummary(summary)
			return nil
		}

		members := cache.Members()
		if *membersSearch != "" {
			members = cache.SearchMembers(*membersSearch)
		}

		t := newTable()
		t.AppendHeader(table.Row{"ID", "Last name", "First name", "Group", "Country", "Votes"})
		for _, m := range members {
			t.AppendRow(table.Row{
				m.ID,
				m.LastName,
				m.FirstName,
				m.Group.Faction(),
				m.Country.Label,
				m.VoteCount,
			})
		}
		t.SetCaption("%d members", len(members))
		t.Render()
		return nil
	},
}

func printSummary(summary snapshot.MemberSummary) {
	m := summary.Member
	age := "-"
	if summary.Age != nil {
		age = fmt.Sprint(*summary.Age)
	}

	t := newTable()
	t.SetTitle("%s %s (%d)", m.FirstName, m.LastName, m.ID)
	t.AppendRows([]table.Row{
		{"Group", m.Group.Faction()},
		{"Country", m.Country.Label},
		{"Age", age},
		{string(votes.For), summary.Positions.For},
		{string(votes.Against), summary.Positions.Against},
		{string(votes.Abstention), summary.Positions.Abstention},
		{string(votes.DidNotVote), summary.Positions.DidNotVote},
		{"Cast", summary.Cast},
	})
	t.Render()
}
