package main

import (
	"fmt"
	"io"
	"net"
	"strconv"
	"text/tabwriter"

	"cloud.google.com/go/civil"
	"github.com/spf13/cobra"

	"github.com/tonywu212005-glitch/sp500-app/api"
	"github.com/tonywu212005-glitch/sp500-app/internal/provider"
	"github.com/tonywu212005-glitch/sp500-app/internal/resolver"
	"github.com/tonywu212005-glitch/sp500-app/internal/session"
	"github.com/tonywu212005-glitch/sp500-app/pkg/models"
)

// withApp runs fn with the wired components and closes them afterwards.
func withApp(cmd *cobra.Command, fn func(a *app) error) error {
	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

// --- Companies Command ---

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "List the companies of the configured universe",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			rows, err := a.dir.Companies(cmd.Context())
			if err != nil {
				return err
			}
			search, _ := cmd.Flags().GetString("search")
			rows = session.Filter(rows, search)

			if all, _ := cmd.Flags().GetBool("all"); all {
				renderCompanies(cmd.OutOrStdout(), session.Paginate(rows, 1, max(len(rows), 1)))
				return nil
			}
			page, _ := cmd.Flags().GetInt("page")
			renderCompanies(cmd.OutOrStdout(), session.Paginate(rows, page, cfg.Directory.PageSize))
			return nil
		})
	},
}

// --- Earnings Command ---

var earningsCmd = &cobra.Command{
	Use:   "earnings SYMBOL...",
	Short: "Resolve the next earnings date of one or more companies",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			today := a.today()
			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "SYMBOL\tDATE\tCOUNTDOWN\tCONFIDENCE\tSOURCE\tSTATUS")
			for _, sym := range args {
				v := session.NewEarningsView(a.earnings.Resolve(cmd.Context(), sym), today)
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					v.Resolution.Symbol, v.Display, v.Countdown, v.Resolution.Confidence,
					orDash(v.Resolution.Source), statusText(v.Resolution.Status, v.Message))
			}
			return w.Flush()
		})
	},
}

// --- Market Cap Command ---

var marketcapCmd = &cobra.Command{
	Use:   "marketcap SYMBOL...",
	Short: "Resolve the market capitalization of one or more companies",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "SYMBOL\tMARKET CAP\tSOURCE\tSTATUS")
			for _, sym := range args {
				v := session.NewCapView(a.caps.Resolve(cmd.Context(), sym))
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					v.Resolution.Symbol, v.Display, orDash(v.Resolution.Source),
					statusText(v.Resolution.Status, v.Message))
			}
			return w.Flush()
		})
	},
}

// --- Calendar Command ---

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Resolve earnings dates and market caps for one page of companies",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			rows, err := a.dir.Companies(cmd.Context())
			if err != nil {
				return err
			}
			search, _ := cmd.Flags().GetString("search")
			n, _ := cmd.Flags().GetInt("page")
			page := session.Paginate(session.Filter(rows, search), n, cfg.Directory.PageSize)

			resolved := resolver.Batch(cmd.Context(), page.Rows, a.earnings, a.caps, cfg.Resolver.Workers)
			renderCalendar(cmd.OutOrStdout(), page, resolved, a.today())
			return nil
		})
	},
}

// --- Providers Command ---

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List registered data providers and the models they serve",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			renderProviders(cmd.OutOrStdout(), a.reg)
			return nil
		})
	},
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			if port, _ := cmd.Flags().GetInt("port"); port > 0 {
				cfg.API.Port = port
			}
			srv := api.NewServer(cfg, api.Deps{
				Directory: a.dir,
				Earnings:  a.earnings,
				Caps:      a.caps,
				Registry:  a.reg,
				Version:   version,
			})
			addr := net.JoinHostPort(cfg.API.Host, strconv.Itoa(cfg.API.Port))
			fmt.Fprintf(cmd.OutOrStdout(), "Starting earningsdesk API server on %s\n", addr)
			return srv.ListenAndServe(addr)
		})
	},
}

func init() {
	companiesCmd.Flags().String("search", "", "filter by name or symbol (case-insensitive)")
	companiesCmd.Flags().Int("page", 1, "page number")
	companiesCmd.Flags().Bool("all", false, "show every company on one page")

	calendarCmd.Flags().String("search", "", "filter by name or symbol (case-insensitive)")
	calendarCmd.Flags().Int("page", 1, "page number")

	serveCmd.Flags().Int("port", 0, "listen port (default from config)")
}

// ============================================================
// Rendering
// ============================================================

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func renderCompanies(out io.Writer, page session.Page) {
	w := newTable(out)
	fmt.Fprintln(w, "#\tSYMBOL\tNAME\tSECTOR")
	offset := (page.Number - 1) * page.Size
	for i, c := range page.Rows {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", offset+i+1, c.Symbol, c.Name, orDash(c.Sector))
	}
	w.Flush()
	fmt.Fprintf(out, "page %d/%d (%d companies)\n", page.Number, page.Pages, page.Total)
}

func renderCalendar(out io.Writer, page session.Page, rows []resolver.Row, today civil.Date) {
	w := newTable(out)
	fmt.Fprintln(w, "SYMBOL\tNAME\tEARNINGS\tCOUNTDOWN\tCONFIDENCE\tMARKET CAP\tSTATUS")
	for _, row := range rows {
		ev := session.NewEarningsView(row.Earnings, today)
		capText := "--"
		if row.Cap != nil {
			capText = session.NewCapView(*row.Cap).Display
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			row.Company.Symbol, row.Company.Name, ev.Display, ev.Countdown,
			row.Earnings.Confidence, capText, row.Earnings.Status)
	}
	w.Flush()
	fmt.Fprintf(out, "page %d/%d (%d companies)\n", page.Number, page.Pages, page.Total)
	for _, row := range rows {
		if row.Earnings.Confidence == models.ConfidenceEstimated {
			fmt.Fprintf(out, "note: estimated dates are %s\n", resolver.DemoSource)
			break
		}
	}
}

func renderProviders(out io.Writer, reg *provider.Registry) {
	w := newTable(out)
	fmt.Fprintln(w, "PROVIDER\tMODELS\tDESCRIPTION")
	for _, info := range reg.List() {
		fmt.Fprintf(w, "%s\t%v\t%s\n", info.Name, info.Models, info.Description)
	}
	w.Flush()
	if len(reg.List()) == 0 {
		fmt.Fprintln(out, "no providers registered")
	}
}

func statusText(s models.Status, msg string) string {
	if s == models.StatusOK {
		return string(s)
	}
	return fmt.Sprintf("%s: %s", s, msg)
}

func orDash(s string) string {
	if s == "" {
		return "--"
	}
	return s
}
