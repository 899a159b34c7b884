package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/clusterscope/internal/model"
	"github.com/dgallion1/clusterscope/internal/vectorindex"
)

var (
	searchIndustry string
	searchRegion   string
	searchTopK     int
	searchJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Scores every chunk of the matching documents against the query and
prints the best results. --industry and --region restrict the candidate
documents; both must match when given together.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchIndustry, "industry", "", "only documents of this industry")
	searchCmd.Flags().StringVar(&searchRegion, "region", "", "only documents of this region")
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", vectorindex.DefaultTopK, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	results, err := a.Index.SearchResults(cmd.Context(), vectorindex.Query{
		Text:     args[0],
		Industry: searchIndustry,
		Region:   searchRegion,
		TopK:     searchTopK,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []model.SearchResult) error {
	if results == nil {
		results = []model.SearchResult{}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []model.SearchResult) error {
	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintln(out, "No results found.")
		return nil
	}

	fmt.Fprintln(out, "Results:")
	fmt.Fprintln(out)
	for i, r := range results {
		title := r.Title
		if title == "" {
			title = r.DocID
		}
		fmt.Fprintf(out, "  [%d] %s #%d (%.2f)\n", i+1, title, r.ChunkID, r.Score)
		if r.Industry != "" || r.Region != "" {
			fmt.Fprintf(out, "      %s / %s\n", dash(r.Industry), dash(r.Region))
		}
		fmt.Fprintf(out, "      %s\n", snippet(r.Text, 120))
		fmt.Fprintln(out)
	}
	return nil
}

func snippet(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n]) + "..."
}
