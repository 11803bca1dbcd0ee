package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"internhunt-engine/internal/config"
	"internhunt-engine/internal/fetch"
	"internhunt-engine/internal/scrape"
	"internhunt-engine/internal/secrets"
	"internhunt-engine/internal/tracker"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
)

// runSync performs one sync with a download progress bar and prints a summary.
func runSync(cfg *config.Config, dataDir string, args []string) error {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	quiet := fs.Bool("quiet", false, "Hide the progress bar")
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, err := openStore(cfg, dataDir)
	if err != nil {
		return err
	}
	defer db.Close()

	fetcher := fetch.New(cfg.UpstreamTimeout(), cfg.Upstream.UserAgent, nil)
	var bar *pb.ProgressBar
	if !*quiet {
		fetcher.WrapBody = func(body io.Reader, size int64) io.Reader {
			bar = pb.New64(max(size, 0)).Set(pb.Bytes, true).SetWriter(os.Stderr)
			bar.Start()
			return bar.NewProxyReader(body)
		}
	}

	syncer := scrape.NewSyncer(cfg, fetcher, db, nil, filepath.Join(dataDir, "sync.lock"))
	res, err := syncer.Run(context.Background())
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		var se *fetch.StatusError
		if errors.As(err, &se) {
			pterm.Error.Println(se.Error())
		}
		return err
	}

	if res.Warning {
		pterm.Warning.Println(res.Message)
	} else {
		pterm.Success.Println(res.Message)
	}
	return pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{
		{"Parsed", "Stored", "Dropped (no URL)", "Took"},
		{
			humanize.Comma(int64(res.Parsed)),
			humanize.Comma(int64(res.Count)),
			humanize.Comma(int64(res.Dropped)),
			res.Duration.Round(time.Millisecond).String(),
		},
	}).Render()
}

// runList prints the active jobs, newest sync first.
func runList(cfg *config.Config, dataDir string, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	query := fs.String("q", "", "Filter by company, role or location")
	category := fs.String("category", "all", "Filter by category")
	limit := fs.Int("n", 50, "Maximum rows to print (0 for all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, err := openStore(cfg, dataDir)
	if err != nil {
		return err
	}
	defer db.Close()

	snap, err := tracker.Load(context.Background(), db, "")
	if err != nil {
		return err
	}
	rows := tracker.Browse(snap.Rows, tracker.Filter{Search: *query, Category: *category})
	if len(rows) == 0 {
		pterm.Info.Println("No active jobs match. Run `engine sync` to load listings.")
		return nil
	}

	shown := rows
	if *limit > 0 && len(shown) > *limit {
		shown = shown[:*limit]
	}
	data := pterm.TableData{{"Company", "Role", "Location", "Category", "Age", "Synced"}}
	for _, r := range shown {
		data = append(data, []string{r.Company, r.Role, r.Location, r.Category, r.Age, humanize.Time(r.UpdatedAt)})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		return err
	}
	pterm.Info.Printfln("%s of %s jobs shown", humanize.Comma(int64(len(shown))), humanize.Comma(int64(len(rows))))
	return nil
}

// runSecret stores or removes storage.admin_dsn in the OS keychain.
func runSecret(cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: engine secret set <dsn> | engine secret delete")
	}
	account := secrets.AdminKeyringAccount(*cfg)
	switch args[0] {
	case "set":
		if len(args) < 2 {
			return errors.New("usage: engine secret set <dsn>")
		}
		if err := secrets.SetAdminDSN(account, strings.TrimSpace(args[1])); err != nil {
			return fmt.Errorf("keychain: %w", err)
		}
		pterm.Success.Printfln("admin dsn saved to keychain entry %q", account)
	case "delete":
		if err := secrets.DeleteAdminDSN(account); err != nil {
			return fmt.Errorf("keychain: %w", err)
		}
		pterm.Success.Printfln("keychain entry %q removed", account)
	default:
		return fmt.Errorf("unknown secret action %q", args[0])
	}
	return nil
}
