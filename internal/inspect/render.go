package inspect

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// Render writes infos as a table.
func Render(w io.Writer, infos []ShardInfo) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Shard", "Rows", "Unique UIDs", "Stats", "Tar entries", "OK"})
	table.SetAutoFormatHeaders(false)

	for _, s := range infos {
		ok := "yes"
		if !s.Consistent() {
			ok = "NO"
		}
		table.Append([]string{
			s.Name,
			strconv.FormatInt(s.Rows, 10),
			strconv.FormatInt(s.DistinctUIDs, 10),
			countString(s.StatsCount),
			countString(s.TarEntries),
			ok,
		})
	}

	table.Render()
}

// RenderSamples writes samples as a table.
func RenderSamples(w io.Writer, samples []Sample) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Shard", "Key", "Text"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)

	for _, s := range samples {
		table.Append([]string{s.Shard, s.Key, s.Text})
	}

	table.Render()
}

func countString(n int) string {
	if n == Missing {
		return "-"
	}
	return strconv.Itoa(n)
}
