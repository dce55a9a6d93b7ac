package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/bennettck/collections-local-sub001/internal/app"
	"github.com/bennettck/collections-local-sub001/internal/config"
	domitem "github.com/bennettck/collections-local-sub001/internal/domain/item"
	"github.com/bennettck/collections-local-sub001/internal/domain/search/request"
	"github.com/bennettck/collections-local-sub001/internal/domain/search/response"
	logpkg "github.com/bennettck/collections-local-sub001/internal/logger"
	itemrepo "github.com/bennettck/collections-local-sub001/internal/repository/item"
	indexinguc "github.com/bennettck/collections-local-sub001/internal/usecase/indexing"
	"github.com/bennettck/collections-local-sub001/internal/version"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "collectionsctl",
		Usage:   "Operate the collections search index",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env",
				Aliases: []string{"e"},
				Usage:   "Environment name used to locate config/<env>.yaml",
				EnvVars: []string{"ENV"},
				Value:   "local",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Explicit path to a config file (overrides --env)",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Run a search query against the index",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Number of candidates to retrieve",
						Value:   request.DefaultTopK,
					},
					&cli.StringFlag{
						Name:  "category",
						Usage: "Restrict results to one category",
					},
					&cli.Float64Flag{
						Name:  "min-score",
						Usage: "Relevance threshold (more negative is stricter)",
						Value: request.DefaultMinRelevanceScore,
					},
					&cli.BoolFlag{
						Name:  "answer",
						Usage: "Synthesize an answer over the results",
						Value: true,
					},
					&cli.StringFlag{
						Name:  "model",
						Usage: "Answer model (defaults to the configured model)",
					},
				},
			},
			{
				Name:   "rebuild",
				Usage:  "Rebuild the index from the metadata source",
				Action: rebuildCommand,
			},
			{
				Name:   "status",
				Usage:  "Show index coverage of the metadata source",
				Action: statusCommand,
			},
			{
				Name:   "import",
				Usage:  "Write items from a JSON array or JSON lines file into the metadata source",
				Action: importCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to the items file (- for stdin)",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "rebuild",
						Usage: "Rebuild the index after importing",
					},
				},
			},
		},
	}
}

// withApp loads configuration, wires the services and runs fn.
func withApp(c *cli.Context, fn func(ctx context.Context, a *app.App) error) error {
	var (
		cfg config.Config
		err error
	)
	if path := c.String("config"); path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load(c.String("env"))
	}
	if err != nil {
		return err
	}

	logger, err := logpkg.NewLogger("cli", c.String("log-level"))
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := app.New(ctx, &cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if *cfg.Index.LoadOnStart {
		if _, err := a.Indexing.LoadSnapshot(ctx); err != nil {
			logger.Warn("Failed to load index snapshot", zap.Error(err))
		}
	}

	return fn(ctx, a)
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	req, err := request.New(
		query,
		c.Int("top-k"),
		c.String("category"),
		c.Float64("min-score"),
		c.Bool("answer"),
		c.String("model"),
	)
	if err != nil {
		return err
	}

	return withApp(c, func(ctx context.Context, a *app.App) error {
		resp, err := a.Search.Search(ctx, &req)
		if err != nil {
			return err
		}
		return printSearch(c.App.Writer, &resp)
	})
}

func rebuildCommand(c *cli.Context) error {
	return withApp(c, func(ctx context.Context, a *app.App) error {
		res, err := a.Indexing.Rebuild(ctx)
		if err != nil {
			return err
		}
		printRebuild(c.App.Writer, res)
		return nil
	})
}

func statusCommand(c *cli.Context) error {
	return withApp(c, func(ctx context.Context, a *app.App) error {
		st, err := a.Indexing.Status(ctx)
		if err != nil {
			return err
		}
		return printStatus(c.App.Writer, st)
	})
}

func importCommand(c *cli.Context) error {
	in, closeFn, err := openInput(c.String("file"))
	if err != nil {
		return err
	}
	defer closeFn()

	items, err := readItems(in)
	if err != nil {
		return err
	}

	return withApp(c, func(ctx context.Context, a *app.App) error {
		for i := range items {
			if err := a.Items.Put(ctx, &items[i]); err != nil {
				return fmt.Errorf("import item %s: %w", items[i].ID, err)
			}
		}
		fmt.Fprintf(c.App.Writer, "imported %d items\n", len(items))

		if !c.Bool("rebuild") {
			return nil
		}
		res, err := a.Indexing.Rebuild(ctx)
		if err != nil {
			return err
		}
		printRebuild(c.App.Writer, res)
		return nil
	})
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, func() { _ = f.Close() }, nil
}

// readItems accepts either a JSON array of items or one JSON item per line.
func readItems(r io.Reader) ([]domitem.Item, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}

	var raws []json.RawMessage
	dec := json.NewDecoder(br)
	if first == '[' {
		if err := dec.Decode(&raws); err != nil {
			return nil, fmt.Errorf("decode items array: %w", err)
		}
	} else {
		for {
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				if errors.Is(err, io.EOF) {
					break
				}
				return nil, fmt.Errorf("decode item %d: %w", len(raws)+1, err)
			}
			raws = append(raws, raw)
		}
	}

	items := make([]domitem.Item, 0, len(raws))
	for i, raw := range raws {
		it, err := itemrepo.DecodeJSON(raw)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		items = append(items, it)
	}
	return items, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, br.UnreadByte()
	}
}

func printSearch(w io.Writer, resp *response.Response) error {
	fmt.Fprintf(w, "query: %s\n", resp.Query)
	fmt.Fprintf(w, "results: %d (retrieval %s)\n", resp.TotalResults(), resp.RetrievalTime.Round(time.Microsecond))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i := range resp.Results {
		r := &resp.Results[i]
		headline := ""
		if it := r.Item(); it != nil {
			headline = it.Headline
		}
		fmt.Fprintf(tw, "[Item %d]\t%s\t%.4f\t%s\n", i+1, r.ItemID(), r.Score(), headline)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write results: %w", err)
	}

	if resp.Confidence != nil {
		fmt.Fprintf(w, "confidence: %.3f\n", *resp.Confidence)
	}
	if resp.AnswerErr != nil {
		fmt.Fprintf(w, "answer error: %v\n", resp.AnswerErr)
	}
	if ans := resp.Answer; ans != nil {
		fmt.Fprintf(w, "\nanswer (%s):\n%s\n", ans.Model, ans.Text)
		cites := make([]string, len(ans.Citations))
		for i, n := range ans.Citations {
			cites[i] = fmt.Sprintf("%d", n)
		}
		fmt.Fprintf(w, "citations: [%s]\n", strings.Join(cites, ", "))
	}
	return nil
}

func printRebuild(w io.Writer, res indexinguc.RebuildResult) {
	fmt.Fprintf(w, "rebuilt index: %d documents, %d skipped, %.3fs (generation %s)\n",
		res.NumDocuments, res.Skipped, res.BuildTime.Seconds(), res.Generation)
}

func printStatus(w io.Writer, st indexinguc.Status) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "loaded\t%t\n", st.IsLoaded)
	fmt.Fprintf(tw, "documents\t%d\n", st.DocCount)
	fmt.Fprintf(tw, "source items\t%d\n", st.TotalItems)
	fmt.Fprintf(tw, "coverage\t%.1f%%\n", st.IndexCoverage*100)
	if st.IsLoaded {
		fmt.Fprintf(tw, "generation\t%s\n", st.Generation)
		fmt.Fprintf(tw, "built at\t%s\n", st.BuiltAt.UTC().Format(time.RFC3339))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write status: %w", err)
	}
	return nil
}
