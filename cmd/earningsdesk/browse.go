package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tonywu212005-glitch/sp500-app/internal/session"
)

// --- Browse Command ---

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Interactively search, page through and select companies",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			return runBrowse(cmd.Context(), a, cmd.InOrStdin(), cmd.OutOrStdout())
		})
	},
}

const browseHelp = `commands:
  search TEXT   filter by name or symbol (empty TEXT clears the filter)
  next, prev    change page
  select N      show earnings date and market cap of company #N
  clear         drop the selection
  quit`

// runBrowse drives a session.State from line commands read from in.
func runBrowse(ctx context.Context, a *app, in io.Reader, out io.Writer) error {
	rows, err := a.dir.Companies(ctx)
	if err != nil {
		return err
	}

	st := session.New(a.cfg.Directory.PageSize)
	renderCompanies(out, st.View(rows))
	fmt.Fprintln(out, browseHelp)

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			break
		}
		verb, arg, _ := strings.Cut(strings.TrimSpace(sc.Text()), " ")
		arg = strings.TrimSpace(arg)

		switch strings.ToLower(verb) {
		case "":
			continue
		case "q", "quit", "exit":
			return nil
		case "h", "help", "?":
			fmt.Fprintln(out, browseHelp)
		case "s", "search":
			st = session.Reduce(st, session.Search{Query: arg})
			renderCompanies(out, st.View(rows))
		case "n", "next":
			st = session.Reduce(st, session.NextPage{Pages: st.View(rows).Pages})
			renderCompanies(out, st.View(rows))
		case "p", "prev":
			st = session.Reduce(st, session.PrevPage{})
			renderCompanies(out, st.View(rows))
		case "select", "sel":
			filtered := session.Filter(rows, st.Query)
			n, err := strconv.Atoi(arg)
			if err != nil || n < 1 || n > len(filtered) {
				fmt.Fprintf(out, "no company #%s\n", arg)
				continue
			}
			st = session.Reduce(st, session.Select{Company: filtered[n-1]})
			showSelection(ctx, a, st, out)
		case "clear":
			st = session.Reduce(st, session.ClearSelection{})
			fmt.Fprintln(out, "selection cleared")
		default:
			fmt.Fprintf(out, "unknown command %q (type help)\n", verb)
		}
	}
	return sc.Err()
}

func showSelection(ctx context.Context, a *app, st session.State, out io.Writer) {
	ev := session.NewEarningsView(a.earnings.Resolve(ctx, st.Symbol), a.today())
	cv := session.NewCapView(a.caps.Resolve(ctx, st.Symbol))

	fmt.Fprintf(out, "%s  %s\n", st.Symbol, st.Name)
	if ev.Resolution.HasDate() {
		fmt.Fprintf(out, "  Next earnings:  %s (%s)\n", ev.Display, ev.Countdown)
		fmt.Fprintf(out, "  Confidence:     %s (%s)\n", ev.Resolution.Confidence, ev.Resolution.Source)
	} else {
		fmt.Fprintf(out, "  Next earnings:  %s\n", ev.Display)
	}
	fmt.Fprintf(out, "  Earnings status: %s\n", statusText(ev.Resolution.Status, ev.Message))
	fmt.Fprintf(out, "  Market cap:     %s\n", cv.Display)
	if !cv.Resolution.Known() {
		fmt.Fprintf(out, "  Cap status:     %s\n", statusText(cv.Resolution.Status, cv.Message))
	}
}
