// Package main provides a command-line client for the marketplace.
//
// Usage:
//
//	marketctl [config flags] <command> [command flags]
//
// Commands: connect, account, fee, list, browse, mine, buy, resell, history.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	logging "github.com/op/go-logging"

	"nft-marketplace/internal/app"
	"nft-marketplace/internal/config"
	"nft-marketplace/internal/domain"
	"nft-marketplace/internal/marketplace"
)

var log = logging.MustGetLogger("marketctl")

type command struct {
	usage string
	run   func(ctx context.Context, svc *marketplace.Service, args []string, out io.Writer) error
	// uploads marks commands that publish metadata; they need a real IPFS
	// node since this process does not serve /ipfs/ after it exits.
	uploads bool
}

var commands = map[string]command{
	"connect": {"prompt the wallet for an account", runConnect, false},
	"account": {"show the connected account", runAccount, false},
	"fee":     {"show the listing fee", runFee, false},
	"list":    {"mint and list: -name -description -price -image", runList, true},
	"browse":  {"list every item for sale", runBrowse, false},
	"mine":    {"list your items: -kind listed|owned", runMine, false},
	"buy":     {"buy an item: -token N -price P [-uri U]", runBuy, false},
	"resell":  {"relist an owned item: -token N -price P", runResell, false},
	"history": {"show your transaction journal", runHistory, false},
}

func main() {
	fs := flag.NewFlagSet("marketctl", flag.ExitOnError)
	config.RegisterFlags(fs)
	jsonOut := fs.Bool("json", false, "Output as JSON")
	fs.Usage = func() { usage(fs) }
	fs.Parse(os.Args[1:])

	if fs.NArg() == 0 {
		usage(fs)
		os.Exit(2)
	}
	name := fs.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", name)
		usage(fs)
		os.Exit(2)
	}

	logging.SetLevel(logging.WARNING, "")

	cfg, err := config.Load(config.Options{
		ConfigPath: config.FlagString(fs, "config"),
		EnvFile:    config.FlagString(fs, "env-file"),
		Flags:      fs,
	})
	if err != nil {
		fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var buildOpts []app.BuildOption
	if cmd.uploads {
		buildOpts = append(buildOpts, app.RequireIPFS())
	}
	a, err := app.Build(ctx, cfg, func(msg string) { fmt.Fprintln(os.Stderr, msg) }, buildOpts...)
	if err != nil {
		fatal(err)
	}
	defer a.Close()

	go func() {
		if err := a.FollowHeads(ctx); err != nil {
			log.Debugf("head subscription: %v", err)
		}
	}()

	var out io.Writer = os.Stdout
	if *jsonOut {
		out = &jsonWriter{w: os.Stdout}
	}
	if err := cmd.run(ctx, a.Service, fs.Args()[1:], out); err != nil {
		a.Close()
		fatal(err)
	}
}

func usage(fs *flag.FlagSet) {
	fmt.Fprintln(os.Stderr, "Usage: marketctl [flags] <command> [command flags]")
	fmt.Fprintln(os.Stderr, "\nCommands:")
	for _, name := range []string{"connect", "account", "fee", "list", "browse", "mine", "buy", "resell", "history"} {
		fmt.Fprintf(os.Stderr, "  %-8s %s\n", name, commands[name].usage)
	}
	fmt.Fprintln(os.Stderr, "\nFlags:")
	fs.PrintDefaults()
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// jsonWriter marks that results should be printed as JSON.
type jsonWriter struct {
	w io.Writer
}

func (j *jsonWriter) Write(p []byte) (int, error) {
	return j.w.Write(p)
}

// emit prints v as JSON when out is a jsonWriter, otherwise calls text.
func emit(out io.Writer, v interface{}, text func(io.Writer)) error {
	if j, ok := out.(*jsonWriter); ok {
		enc := json.NewEncoder(j.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(out)
	return nil
}

func runConnect(ctx context.Context, svc *marketplace.Service, args []string, out io.Writer) error {
	if err := svc.Connect(ctx); err != nil {
		return err
	}
	return runAccount(ctx, svc, args, out)
}

func runAccount(_ context.Context, svc *marketplace.Service, _ []string, out io.Writer) error {
	v := map[string]string{
		"account":  svc.Account().String(),
		"state":    svc.State().String(),
		"currency": svc.Currency(),
	}
	return emit(out, v, func(w io.Writer) {
		if svc.Account().IsEmpty() {
			fmt.Fprintf(w, "Not connected (%s)\n", svc.State())
			return
		}
		fmt.Fprintf(w, "Account: %s (%s)\n", svc.Account(), svc.State())
	})
}

func runFee(ctx context.Context, svc *marketplace.Service, _ []string, out io.Writer) error {
	fee, err := svc.ListingFee(ctx)
	if err != nil {
		return err
	}
	return emit(out, map[string]string{"fee": fee, "currency": svc.Currency()}, func(w io.Writer) {
		fmt.Fprintf(w, "Listing fee: %s %s\n", fee, svc.Currency())
	})
}

func runList(ctx context.Context, svc *marketplace.Service, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	var req domain.ListingRequest
	fs.StringVar(&req.Name, "name", "", "Item name (required)")
	fs.StringVar(&req.Description, "description", "", "Item description (required)")
	fs.StringVar(&req.Price, "price", "", "Price in "+domain.Currency+" (required)")
	fs.StringVar(&req.ImageLocator, "image", "", "Image locator (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	listing, err := svc.MintAndList(ctx, req)
	if err != nil {
		return err
	}
	return emit(out, listing, func(w io.Writer) {
		fmt.Fprintf(w, "Listed token %d at %s %s\n", listing.TokenID, listing.Price, svc.Currency())
		fmt.Fprintf(w, "Metadata: %s\n", listing.MetadataLocator)
		fmt.Fprintf(w, "Tx: %s (block %d)\n", listing.TxHash, listing.BlockNumber)
	})
}

func runBrowse(ctx context.Context, svc *marketplace.Service, _ []string, out io.Writer) error {
	items, err := svc.BrowseAll(ctx)
	if err != nil {
		return err
	}
	return emit(out, items, func(w io.Writer) { printItems(w, items, svc.Currency()) })
}

func runMine(ctx context.Context, svc *marketplace.Service, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("mine", flag.ContinueOnError)
	kind := fs.String("kind", string(domain.KindOwned), "listed or owned")
	if err := fs.Parse(args); err != nil {
		return err
	}

	items, err := svc.BrowseMine(ctx, domain.ListingKind(*kind))
	if err != nil {
		return err
	}
	return emit(out, items, func(w io.Writer) { printItems(w, items, svc.Currency()) })
}

func tokenAndPrice(name string, args []string, extra ...func(*flag.FlagSet)) (int64, string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	token := fs.Int64("token", 0, "Token ID (required)")
	price := fs.String("price", "", "Price in "+domain.Currency+" (required)")
	for _, fn := range extra {
		fn(fs)
	}
	if err := fs.Parse(args); err != nil {
		return 0, "", err
	}
	if *token <= 0 {
		return 0, "", errors.New("-token is required")
	}
	if strings.TrimSpace(*price) == "" {
		return 0, "", errors.New("-price is required")
	}
	return *token, *price, nil
}

func runBuy(ctx context.Context, svc *marketplace.Service, args []string, out io.Writer) error {
	var uri string
	token, price, err := tokenAndPrice("buy", args, func(fs *flag.FlagSet) {
		fs.StringVar(&uri, "uri", "", "Token URI from browse, kept in the journal")
	})
	if err != nil {
		return err
	}

	rcpt, err := svc.Purchase(ctx, domain.MarketItem{TokenID: token, Price: price, MetadataLocator: uri})
	if err != nil {
		return err
	}
	return emit(out, rcpt, func(w io.Writer) {
		fmt.Fprintf(w, "Bought token %d for %s %s\n", token, price, svc.Currency())
		fmt.Fprintf(w, "Tx: %s (block %d)\n", rcpt.TxHash.Hex(), rcpt.BlockNumber)
	})
}

func runResell(ctx context.Context, svc *marketplace.Service, args []string, out io.Writer) error {
	token, price, err := tokenAndPrice("resell", args)
	if err != nil {
		return err
	}

	rcpt, err := svc.Resell(ctx, token, price)
	if err != nil {
		return err
	}
	return emit(out, rcpt, func(w io.Writer) {
		fmt.Fprintf(w, "Relisted token %d at %s %s\n", token, price, svc.Currency())
		fmt.Fprintf(w, "Tx: %s (block %d)\n", rcpt.TxHash.Hex(), rcpt.BlockNumber)
	})
}

func runHistory(ctx context.Context, svc *marketplace.Service, _ []string, out io.Writer) error {
	txs, err := svc.History(ctx)
	if err != nil {
		return err
	}
	return emit(out, txs, func(w io.Writer) {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "OPERATION\tTOKEN\tPRICE\tSTATUS\tTX")
		for _, tx := range txs {
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", tx.Operation, tx.TokenID, tx.Price, tx.Status, tx.TxHash)
		}
		tw.Flush()
	})
}

func printItems(w io.Writer, items []domain.MarketItem, currency string) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No items")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "TOKEN\tNAME\tPRICE (%s)\tSELLER\tOWNER\n", currency)
	for _, it := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", it.TokenID, it.Name, it.Price, it.Seller, it.Owner)
	}
	tw.Flush()
}
