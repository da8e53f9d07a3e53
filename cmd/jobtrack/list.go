package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/jonathan/jobtrack/internal/dashboard"
	"github.com/jonathan/jobtrack/internal/listing"
	"github.com/jonathan/jobtrack/internal/observability"
	"github.com/jonathan/jobtrack/internal/types"
	"github.com/spf13/cobra"
)

var (
	listSearch   string
	listJobType  string
	listStatus   string
	listSort     string
	listDir      string
	listPage     int
	listPageSize int
	listJSON     bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print one page of the applications table",
	Long: `Print the seeded applications filtered, sorted and paged the same way
the API does.`,
	Example: `  jobtrack list --search google
  jobtrack list --status "Interview Scheduled" --sort companyName --dir asc`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listSearch, "search", "", "Case-insensitive match on company, job title or location")
	listCmd.Flags().StringVar(&listJobType, "job-type", types.FilterAll, "Job type filter")
	listCmd.Flags().StringVar(&listStatus, "status", types.FilterAll, "Status filter")
	listCmd.Flags().StringVar(&listSort, "sort", string(types.SortByAppliedDate), "Sort key: appliedDate or companyName")
	listCmd.Flags().StringVar(&listDir, "dir", string(types.SortDesc), "Sort direction: asc or desc")
	listCmd.Flags().IntVar(&listPage, "page", 1, "Page number")
	listCmd.Flags().IntVar(&listPageSize, "page-size", 0, "Rows per page (default from config)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print JSON instead of a table")
	rootCmd.AddCommand(listCmd)
}

// listQuery maps the flags the user set onto API query parameters.
func listQuery(cmd *cobra.Command) url.Values {
	q := url.Values{}
	set := func(flag, param, value string) {
		if cmd.Flags().Changed(flag) {
			q.Set(param, value)
		}
	}
	set("search", listing.ParamSearch, listSearch)
	set("job-type", listing.ParamJobType, listJobType)
	set("status", listing.ParamStatus, listStatus)
	set("sort", listing.ParamSort, listSort)
	set("dir", listing.ParamDir, listDir)
	set("page", listing.ParamPage, strconv.Itoa(listPage))
	set("page-size", listing.ParamPageSize, strconv.Itoa(listPageSize))
	return q
}

func runList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := loadStore(cfg)
	if err != nil {
		return err
	}

	params := types.DefaultViewParams()
	if cfg.PageSize > 0 {
		params.PageSize = cfg.PageSize
	}
	params, err = listing.ApplyQuery(params, listQuery(cmd))
	if err != nil {
		return err
	}

	records := st.List()
	engine := listing.NewEngine(cfg.LanguageTag())
	view := engine.ComputeView(records, params)
	if clamped := listing.ClampPage(params.Page, view.TotalPages); clamped != params.Page {
		params.Page = clamped
		view = engine.ComputeView(records, params)
	}
	summary := dashboard.Summarize(records)

	if listJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(struct {
			types.View
			Summary types.TableSummary `json:"summary"`
		}{view, summary}); err != nil {
			return fmt.Errorf("failed to encode view: %w", err)
		}
		return nil
	}

	observability.NewPrinter(cmd.OutOrStdout()).PrintView(view, params, summary)
	return nil
}
