package main

import (
	"bytes"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/posify/internal/domain/order"
	"github.com/xenking/posify/internal/domain/pos"
	"github.com/xenking/posify/internal/storage/file"
	"github.com/xenking/posify/internal/storage/postgres"
)

type options struct {
	storage     string
	dir         string
	compress    bool
	databaseURL string
	format      string
	out         string
	status      string
	since       string
	summary     bool
	target      bucketTarget
}

func main() {
	var opts options
	flag.StringVar(&opts.storage, "storage", "file", "snapshot storage to read: file or postgres")
	flag.StringVar(&opts.dir, "dir", "data", "snapshot directory for file storage")
	flag.BoolVar(&opts.compress, "compress", false, "snapshots are gzip-compressed")
	flag.StringVar(&opts.databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&opts.format, "format", formatCSV, "output format: csv or xlsx")
	flag.StringVar(&opts.out, "out", "-", "output file, - for stdout, empty to skip when uploading")
	flag.StringVar(&opts.status, "status", "", "export only orders in this status")
	flag.StringVar(&opts.since, "since", "", "export only orders created at or after this RFC3339 time")
	flag.BoolVar(&opts.summary, "summary", false, "export per-status totals from the postgres ledger instead of orders")
	flag.StringVar(&opts.target.bucket, "s3-bucket", "", "upload the export to this bucket")
	flag.StringVar(&opts.target.key, "s3-key", "", "object key, defaults to orders-<timestamp>.<format>")
	flag.StringVar(&opts.target.endpoint, "s3-endpoint", "", "custom S3 endpoint, e.g. an R2 account URL")
	flag.StringVar(&opts.target.region, "s3-region", "auto", "bucket region")
	flag.Parse()

	if opts.databaseURL == "" {
		opts.databaseURL = os.Getenv("DATABASE_URL")
	}
	opts.target.accessKey = os.Getenv("POS_S3_ACCESS_KEY")
	opts.target.secretKey = os.Getenv("POS_S3_SECRET_KEY")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, opts); err != nil {
		slog.Error("order export failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	if _, ok := contentTypes[opts.format]; !ok {
		return errors.Errorf("unknown format %q", opts.format)
	}
	var since time.Time
	if opts.since != "" {
		t, err := time.Parse(time.RFC3339, opts.since)
		if err != nil {
			return errors.Wrap(err, "parse since")
		}
		since = t
	}
	if opts.status != "" && !order.Status(opts.status).Valid() {
		return errors.Errorf("invalid status %q", opts.status)
	}

	var buf bytes.Buffer
	if opts.summary {
		if err := exportSummary(ctx, &buf, opts, since); err != nil {
			return err
		}
	} else {
		if err := exportOrders(ctx, &buf, opts, since); err != nil {
			return err
		}
	}

	switch opts.out {
	case "":
	case "-":
		if _, err := os.Stdout.Write(buf.Bytes()); err != nil {
			return errors.Wrap(err, "write stdout")
		}
	default:
		if err := os.WriteFile(opts.out, buf.Bytes(), 0o640); err != nil {
			return errors.Wrap(err, "write output")
		}
	}

	if opts.target.bucket != "" {
		if opts.target.key == "" {
			opts.target.key = "orders-" + time.Now().UTC().Format("20060102T150405Z") + "." + opts.format
		}
		if err := upload(ctx, opts.target, buf.Bytes(), contentTypes[opts.format]); err != nil {
			return err
		}
		slog.Info("export uploaded",
			slog.String("bucket", opts.target.bucket),
			slog.String("key", opts.target.key),
		)
	}
	return nil
}

func exportOrders(ctx context.Context, buf *bytes.Buffer, opts options, since time.Time) error {
	var repo pos.Repository
	switch opts.storage {
	case "file":
		r, err := file.New(file.Options{Dir: opts.dir, Compress: opts.compress})
		if err != nil {
			return err
		}
		repo = r
	case "postgres":
		if opts.databaseURL == "" {
			return errors.New("database URL is required: set --database-url or DATABASE_URL")
		}
		pool, err := postgres.NewPool(ctx, opts.databaseURL)
		if err != nil {
			return errors.Wrap(err, "connect to database")
		}
		defer pool.Close()
		repo = postgres.NewRepository(pool)
	default:
		return errors.Errorf("unknown storage %q", opts.storage)
	}

	orders, err := pos.LoadOrders(ctx, repo)
	if err != nil {
		return err
	}
	orders = selectOrders(orders, order.Filter{Status: order.Status(opts.status), Since: since})

	if err := writeOrders(buf, opts.format, orders); err != nil {
		return errors.Wrap(err, "write orders")
	}
	slog.Info("orders exported", slog.Int("count", len(orders)), slog.String("format", opts.format))
	return nil
}

// selectOrders keeps orders matching f, oldest first.
func selectOrders(orders []order.Order, f order.Filter) []order.Order {
	orders = slices.DeleteFunc(orders, func(o order.Order) bool { return !f.Match(o) })
	order.Sort(orders, order.SortOldest)
	return orders
}

func exportSummary(ctx context.Context, buf *bytes.Buffer, opts options, since time.Time) error {
	if opts.databaseURL == "" {
		return errors.New("summary reads the postgres ledger: set --database-url or DATABASE_URL")
	}
	pool, err := postgres.NewPool(ctx, opts.databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	totals, err := postgres.NewRepository(pool).TotalsByStatus(ctx, since)
	if err != nil {
		return err
	}
	if err := writeSummary(buf, opts.format, totals); err != nil {
		return errors.Wrap(err, "write summary")
	}
	return nil
}
