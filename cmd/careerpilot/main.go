package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"careerpilot.local/internal/config"
	"careerpilot.local/internal/discovery"
	"careerpilot.local/internal/docreader"
	"careerpilot.local/internal/letters"
	"careerpilot.local/internal/llm"
	"careerpilot.local/internal/logging"
	"careerpilot.local/internal/outreach"
	"careerpilot.local/internal/portfolio"
	"careerpilot.local/internal/scratchpad"
	"careerpilot.local/internal/serpapi"
	"careerpilot.local/internal/storage"
	"careerpilot.local/internal/tracker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "careerpilot",
		Short:        "Personal career assistant: applications, cold outreach and job discovery",
		SilenceUsage: true,
	}
	root.AddCommand(
		newChatCmd(),
		newAskCmd(),
		newSearchCmd(),
		newScholarCmd(),
		newUsageCmd(),
		newGraphCmd(),
		newPortfolioCmd(),
		newPitchCmd(),
		newBriefCmd(),
		newQRCmd(),
	)
	return root
}

// app wires the data-plane services every command shares. LLM pieces are
// built per command so that tracker and search commands run without a
// GOOGLE_API_KEY.
type app struct {
	cfg config.Config
	log *zap.Logger

	tracker   *tracker.Service
	outreach  *outreach.Service
	discovery *discovery.Service
	docs      *docreader.Reader
	pad       *scratchpad.Pad
	portfolio *portfolio.Service
}

func newApp() (*app, error) {
	_ = godotenv.Load()

	cfg, err := config.Load(config.NewViper())
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	apps, err := storage.NewFileStore(storage.FileConfig[tracker.Collection]{
		Path:   cfg.ApplicationsPath(),
		Empty:  tracker.EmptyCollection,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	emails, err := storage.NewFileStore(storage.FileConfig[outreach.Collection]{
		Path:   cfg.ColdEmailsPath(),
		Empty:  outreach.EmptyCollection,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	jobs, err := storage.NewFileStore(storage.FileConfig[discovery.JobCollection]{
		Path:   cfg.OpportunitiesPath(),
		Empty:  discovery.EmptyJobCollection,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	ledger, err := storage.NewFileStore(storage.FileConfig[discovery.UsageLedger]{
		Path:   cfg.UsagePath(),
		Empty:  discovery.EmptyLedger,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}

	trk, err := tracker.New(tracker.Config{Store: apps, Logger: logger})
	if err != nil {
		return nil, err
	}
	out, err := outreach.New(outreach.Config{Store: emails, Logger: logger})
	if err != nil {
		return nil, err
	}
	disc, err := discovery.New(discovery.Config{
		Jobs:       jobs,
		Ledger:     ledger,
		Client:     serpapi.New(cfg.SerpAPIKey),
		UsageLimit: cfg.UsageLimit,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}
	port, err := portfolio.New(portfolio.Config{
		Tracker:   trk,
		Outreach:  out,
		Discovery: disc,
		Candidate: cfg.CandidateName,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:       cfg,
		log:       logger,
		tracker:   trk,
		outreach:  out,
		discovery: disc,
		docs:      docreader.New(cfg.DocumentsDir),
		pad:       scratchpad.New(cfg.Scratchpad, nil),
		portfolio: port,
	}, nil
}

func (a *app) close() {
	_ = a.log.Sync()
}

// newLetters builds the LLM-backed letter service. Only commands that
// actually generate text pay the key requirement.
func (a *app) newLetters(ctx context.Context) (*letters.Service, error) {
	if err := a.cfg.RequireGoogleKey(); err != nil {
		return nil, err
	}
	gen, err := llm.NewClient(ctx, a.cfg.GoogleAPIKey, a.cfg.Model, a.log)
	if err != nil {
		return nil, err
	}
	return letters.New(letters.Config{
		Generator: gen,
		Docs:      a.docs,
		Tracker:   a.tracker,
		Dir:       a.cfg.LettersDir,
		Candidate: a.cfg.CandidateName,
		Logger:    a.log,
	})
}

func newSearchCmd() *cobra.Command {
	var (
		queries    []string
		locations  []string
		datePosted string
		maxResults int
		usageLimit int
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run metered job searches and save new postings",
		Long: "Runs every query against every location and saves postings that are not\n" +
			"already stored. Stops as soon as the monthly usage limit is hit; the\n" +
			"default limit of 95 leaves headroom for interactive use.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			return a.runSearch(cmd.Context(), queries, locations, datePosted, maxResults, usageLimit)
		},
	}
	cmd.Flags().StringSliceVarP(&queries, "query", "q", nil, "search query (repeatable)")
	cmd.Flags().StringSliceVarP(&locations, "location", "l", nil, "location (repeatable)")
	cmd.Flags().StringVar(&datePosted, "date-posted", "week", "posting age: today, 3days, week or month")
	cmd.Flags().IntVar(&maxResults, "max-results", 10, "results per search, capped at 10 upstream")
	cmd.Flags().IntVar(&usageLimit, "usage-limit", 95, "stop once this many searches were used this month")
	_ = cmd.MarkFlagRequired("query")
	return cmd
}

func (a *app) runSearch(ctx context.Context, queries, locations []string, datePosted string, maxResults, usageLimit int) error {
	if err := a.cfg.RequireSerpKey(); err != nil {
		return err
	}
	if len(locations) == 0 {
		locations = []string{""}
	}

	var (
		totalNew int
		searches int
		last     discovery.Usage
	)
	for _, query := range queries {
		for _, location := range locations {
			res, err := a.discovery.SearchAndSave(ctx, discovery.SearchParams{
				Query:      query,
				Location:   location,
				DatePosted: datePosted,
				MaxResults: maxResults,
				UsageLimit: usageLimit,
				Persist:    true,
			})
			if err != nil {
				return err
			}
			last = res.Usage

			label := query
			if location != "" {
				label += " @ " + location
			}
			if strings.HasPrefix(res.Warning, "usage limit reached") {
				fmt.Printf("⚠️ %s\n", res.Warning)
				fmt.Printf("Stopping early: %d new posting(s) saved across %d search(es).\n", totalNew, searches)
				return nil
			}
			if res.Error != "" {
				fmt.Printf("❌ %s: %s\n", label, res.Error)
				continue
			}
			searches++
			totalNew += res.NewJobs
			fmt.Printf("%s: %d found, %d new\n", label, len(res.Jobs), res.NewJobs)
			if res.Warning != "" {
				fmt.Printf("⚠️ %s\n", res.Warning)
			}
		}
	}
	fmt.Printf("Done: %d new posting(s) saved across %d search(es).\n", totalNew, searches)
	fmt.Printf("Usage: %d/%d searches this month (%d remaining)\n", last.Used, last.Limit, last.Remaining)
	return nil
}

func newScholarCmd() *cobra.Command {
	var (
		yearFrom   int
		yearTo     int
		maxResults int
	)
	cmd := &cobra.Command{
		Use:   "scholar <query>",
		Short: "Search Google Scholar (shares the monthly search quota)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.cfg.RequireSerpKey(); err != nil {
				return err
			}
			res, err := a.discovery.SearchScholar(cmd.Context(), discovery.ScholarParams{
				Query:      args[0],
				YearFrom:   yearFrom,
				YearTo:     yearTo,
				MaxResults: maxResults,
			})
			if err != nil {
				return err
			}
			fmt.Println(discovery.FormatScholarResult(res))
			return nil
		},
	}
	cmd.Flags().IntVar(&yearFrom, "from", 0, "earliest publication year")
	cmd.Flags().IntVar(&yearTo, "to", 0, "latest publication year")
	cmd.Flags().IntVar(&maxResults, "max-results", 10, "results to return, capped at 10 upstream")
	return cmd
}

func newUsageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Show SerpAPI usage for the current month",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			rep, err := a.discovery.UsageReport()
			if err != nil {
				return err
			}
			fmt.Println(discovery.FormatReport(rep))
			return nil
		},
	}
}

func newGraphCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Print the referral network as Mermaid text",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			graph, _, err := a.outreach.Graph()
			if err != nil {
				return err
			}
			fmt.Println(graph)
			return nil
		},
	}
}

func newPortfolioCmd() *cobra.Command {
	var (
		qrOut string
		qrURL string
	)
	cmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Render the career portfolio as markdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			md, err := a.portfolio.Build()
			if err != nil {
				return err
			}
			fmt.Println(md)
			if qrOut != "" {
				if qrURL == "" {
					return fmt.Errorf("--qr-url is required with --qr-out")
				}
				if err := a.portfolio.WriteQR(qrURL, qrOut); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "QR code written to %s\n", qrOut)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&qrOut, "qr-out", "", "also write a QR code PNG to this path")
	cmd.Flags().StringVar(&qrURL, "qr-url", "", "link the QR code points at")
	return cmd
}

func newPitchCmd() *cobra.Command {
	var jobDescription string
	cmd := &cobra.Command{
		Use:   "pitch <company>",
		Short: "Write an elevator pitch for a company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			let, err := a.newLetters(cmd.Context())
			if err != nil {
				return err
			}
			text, err := let.ElevatorPitch(cmd.Context(), args[0], jobDescription)
			if err != nil {
				return err
			}
			fmt.Println(text)
			return nil
		},
	}
	cmd.Flags().StringVar(&jobDescription, "jd", "", "job description to tailor the pitch to")
	return cmd
}

func newBriefCmd() *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "brief <company>",
		Short: "Write a company research brief",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			let, err := a.newLetters(cmd.Context())
			if err != nil {
				return err
			}
			text, err := let.CompanyBrief(cmd.Context(), args[0], role)
			if err != nil {
				return err
			}
			fmt.Println(text)
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "role the brief should focus on")
	return cmd
}

func newQRCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "qr <url>",
		Short: "Write a QR code PNG for a link",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.portfolio.WriteQR(args[0], out); err != nil {
				return err
			}
			fmt.Printf("QR code written to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "portfolio_qr.png", "output file")
	return cmd
}
