package main

import (
	"context"
	"flag"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/posify/internal/domain/menu"
	"github.com/xenking/posify/internal/domain/order"
	"github.com/xenking/posify/internal/domain/payment"
	"github.com/xenking/posify/internal/domain/pos"
	"github.com/xenking/posify/internal/storage/file"
	"github.com/xenking/posify/internal/storage/postgres"
)

type options struct {
	storage     string
	dir         string
	compress    bool
	databaseURL string
	orders      int
	days        int
	seed        uint64
}

func main() {
	var opts options
	flag.StringVar(&opts.storage, "storage", "file", "snapshot storage to seed: file or postgres")
	flag.StringVar(&opts.dir, "dir", "data", "snapshot directory for file storage")
	flag.BoolVar(&opts.compress, "compress", false, "gzip snapshot files")
	flag.StringVar(&opts.databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.IntVar(&opts.orders, "orders", 50, "number of demo orders to place")
	flag.IntVar(&opts.days, "days", 7, "spread orders over this many past days")
	flag.Uint64Var(&opts.seed, "seed", 1, "random seed")
	flag.Parse()

	if opts.databaseURL == "" {
		opts.databaseURL = os.Getenv("DATABASE_URL")
	}
	if opts.orders < 1 || opts.days < 1 {
		slog.Error("orders and days must be positive")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, opts); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, opts options) error {
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
		slog.Info("connecting to database")
		pool, err := postgres.NewPool(ctx, opts.databaseURL)
		if err != nil {
			return errors.Wrap(err, "connect to database")
		}
		defer pool.Close()

		slog.Info("running migrations")
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			return errors.Wrap(err, "run migrations")
		}
		repo = postgres.NewRepository(pool)
	default:
		return errors.Errorf("unknown storage %q", opts.storage)
	}

	rnd := rand.New(rand.NewPCG(opts.seed, opts.seed))
	clock := &demoClock{}
	store, err := pos.Open(ctx, repo, pos.WithClock(clock.Now))
	if err != nil {
		return errors.Wrap(err, "open terminal state")
	}

	start := time.Now().UTC().Truncate(time.Hour).AddDate(0, 0, -opts.days)
	placed, err := seedOrders(ctx, store, seedConfig{
		items:  menu.DefaultItems(),
		orders: opts.orders,
		start:  start,
		step:   time.Duration(opts.days) * 24 * time.Hour / time.Duration(opts.orders),
		rnd:    rnd,
		clock:  clock,
	})
	if err != nil {
		return err
	}
	slog.Info("placed demo orders", slog.Int("count", placed))
	return nil
}

// demoClock is advanced by the seeder so that orders spread over past days.
type demoClock struct {
	now time.Time
}

func (c *demoClock) Now() time.Time { return c.now }

type seedConfig struct {
	items  []menu.Item
	orders int
	start  time.Time
	step   time.Duration
	rnd    *rand.Rand
	clock  *demoClock
}

var fulfilment = []order.Type{order.TypeDineIn, order.TypeTakeaway, order.TypeDelivery}

// seedOrders fills the cart with random available items and checks out
// with cash for each order, then moves it along the kitchen workflow.
func seedOrders(ctx context.Context, store *pos.Store, cfg seedConfig) (int, error) {
	var available []menu.Item
	for _, item := range cfg.items {
		if item.Available {
			available = append(available, item)
		}
	}
	if len(available) == 0 {
		return 0, errors.New("no available menu items")
	}

	proc := payment.NewProcessor(payment.WithDelayScale(0), payment.WithClock(cfg.clock.Now))
	for i := range cfg.orders {
		cfg.clock.now = cfg.start.Add(time.Duration(i) * cfg.step)

		lines := 1 + cfg.rnd.IntN(3)
		for range lines {
			item := available[cfg.rnd.IntN(len(available))]
			store.AddToCart(ctx, item, 1+cfg.rnd.IntN(2), "")
		}
		if err := store.SetOrderType(ctx, fulfilment[cfg.rnd.IntN(len(fulfilment))]); err != nil {
			return i, err
		}

		view, err := store.Cart()
		if err != nil {
			return i, errors.Wrap(err, "price cart")
		}
		o, err := store.Checkout(ctx, proc, payment.Request{
			Type:           order.PaymentCash,
			AmountReceived: view.Totals.Total.Ceil(),
		})
		if err != nil {
			return i, errors.Wrapf(err, "checkout order %d", i+1)
		}

		if err := advance(ctx, store, o.ID, cfg.rnd); err != nil {
			return i, err
		}
	}
	return cfg.orders, nil
}

// advance walks an order through a random prefix of the kitchen workflow.
// A few orders are cancelled instead.
func advance(ctx context.Context, store *pos.Store, id string, rnd *rand.Rand) error {
	if rnd.IntN(10) == 0 {
		s := order.StatusCancelled
		if _, err := store.UpdateOrder(ctx, id, order.Update{Status: &s}); err != nil {
			return errors.Wrapf(err, "cancel order %s", id)
		}
		return nil
	}
	steps := []order.Status{order.StatusPreparing, order.StatusReady, order.StatusServed}
	for _, s := range steps[:rnd.IntN(len(steps)+1)] {
		if _, err := store.UpdateOrder(ctx, id, order.Update{Status: &s}); err != nil {
			return errors.Wrapf(err, "advance order %s", id)
		}
	}
	return nil
}
