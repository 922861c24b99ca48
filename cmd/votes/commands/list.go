package commands

import (
	"fmt"

	"rollcall-backend/internal/components/chrono"
	"rollcall-backend/internal/snapshot"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	listTitle    *string
	listGeoArea  *string
	listFrom     *string
	listTo       *string
	listMember   *int64
	listPage     *int
	listPageSize *int
	listAll      *bool
)

func init() {
	listTitle = listCmd.Flags().String("title", "", "Only votes whose title contains this text.")
	listGeoArea = listCmd.Flags().String("geo-area", "", "Only votes concerning this geographic area code.")
	listFrom = listCmd.Flags().String("from", "", "Only votes on or after this date (DD-MM-YYYY, DD.MM.YYYY or YYYY-MM-DD).")
	listTo = listCmd.Flags().String("to", "", "Only votes on or before this date.")
	listMember = listCmd.Flags().Int64("member", 0, "Show the position of this member on every vote.")
	listPage = listCmd.Flags().Int("page", 1, "The page to show.")
	listPageSize = listCmd.Flags().Int("page-size", snapshot.DefaultPageSize, "The number of votes per page.")
	listAll = listCmd.Flags().Bool("all", false, "Show every matching vote.")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list [--title <text>] [--geo-area <code>] [--from <date>] [--to <date>] [--member <id>]",
	Short: "Lists the stored votes, newest first.",
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

		q := snapshot.Query{
			Title:    *listTitle,
			GeoArea:  *listGeoArea,
			MemberID: *listMember,
			Page:     *listPage,
			PageSize: *listPageSize,
			ShowAll:  *listAll,
		}
		if d, ok := snapshot.ParseDate(*listFrom); ok {
			q.From = &d
		}
		if d, ok := snapshot.ParseDate(*listTo); ok {
			q.To = &d
		}
		res := cache.Query(q)

		t := newTable()
		header := table.Row{"ID", "Timestamp", "Title", "Result", "For", "Against", "Abst."}
		if q.MemberID != 0 {
			header = append(header, "Member")
		}
		t.AppendHeader(header)

		for _, item := range res.Items {
			row := table.Row{
				item.Record.ID,
				item.Record.Timestamp,
				truncate(item.Record.DisplayTitle, 60),
				item.Record.Result,
				item.Counts.For,
				item.Counts.Against,
				item.Counts.Abstention,
			}
			if q.MemberID != 0 {
				row = append(row, item.MemberPosition)
			}
			t.AppendRow(row)
		}

		footer := fmt.Sprintf("page %d/%d, %d votes", res.Page, res.TotalPages, res.Total)
		if q.MemberID != 0 {
			footer += fmt.Sprintf(", member %d cast %d", q.MemberID, res.MemberCast)
		}
		t.SetCaption("%s", footer)
		t.Render()
		return nil
	},
}
