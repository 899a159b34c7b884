package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/clusterscope/internal/model"
	"github.com/dgallion1/clusterscope/internal/report"
)

var (
	reportType     string
	reportTitle    string
	reportIndustry string
	reportRegion   string
	reportLang     string
	reportNoCharts bool
	reportSession  string

	showPDF string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a report",
	Long: `Generates a structured report and saves it to the data directory.
Unknown report types fall back to a three-section default. With --session the
conversation transcript of that chat session is attached.`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

var showReportCmd = &cobra.Command{
	Use:   "show-report [report-id]",
	Short: "Print a saved report",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportType, "type", report.TypeComprehensive, "report type")
	reportCmd.Flags().StringVar(&reportTitle, "title", "", "raw title, used when neither industry nor region is set")
	reportCmd.Flags().StringVar(&reportIndustry, "industry", "", "industry focus")
	reportCmd.Flags().StringVar(&reportRegion, "region", "", "region focus")
	reportCmd.Flags().StringVar(&reportLang, "lang", "zh", "report language (zh or en)")
	reportCmd.Flags().BoolVar(&reportNoCharts, "no-charts", false, "omit charts")
	reportCmd.Flags().StringVar(&reportSession, "session", "", "chat session whose transcript is attached")

	showReportCmd.Flags().StringVar(&showPDF, "pdf", "", "write the PDF rendering to this path")

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(showReportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	if reportLang != "zh" && reportLang != "en" {
		return fmt.Errorf("unsupported language %q", reportLang)
	}
	a, err := openApp(cmd, reportSession != "")
	if err != nil {
		return err
	}
	defer a.Close()

	var transcript []model.Message
	if reportSession != "" {
		sess, err := a.Sessions.Get(cmd.Context(), reportSession)
		if err != nil {
			return err
		}
		transcript = sess.Messages
	}

	id, url, err := a.Assembler.Generate(cmd.Context(), report.Request{
		Transcript:    transcript,
		ReportType:    reportType,
		Title:         reportTitle,
		Industry:      reportIndustry,
		Region:        reportRegion,
		IncludeCharts: !reportNoCharts,
		Language:      reportLang,
	})
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Report %s\nDownload: %s\n", id, url)
	return nil
}

func runShowReport(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	r, err := a.Reports.Get(args[0])
	if err != nil {
		return err
	}

	if showPDF != "" {
		data, err := a.PDF.Render(r)
		if err != nil {
			return err
		}
		if err := os.WriteFile(showPDF, data, 0o644); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", showPDF)
		return nil
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
