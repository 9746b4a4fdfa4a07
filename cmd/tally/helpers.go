package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/events"
	"github.com/Veraticus/tally/internal/ledger"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/storage"
)

// openLedger opens the configured blob store and loads the ledger from it.
// The returned function releases the store and the event publisher.
func (a *app) openLedger(ctx context.Context) (*ledger.Ledger, func(), error) {
	opts := a.cfg.StorageOptions()
	blobs, err := storage.Open(ctx, opts)
	if err != nil {
		return nil, nil, common.NewUserError(fmt.Sprintf("could not open the %s ledger storage", opts.Backend), err)
	}
	repo := storage.NewRepository(blobs, slog.Default())

	var publisher events.Publisher = events.Noop{}
	if a.cfg.Events.Enabled() {
		amqp, err := events.NewAMQPPublisher(a.cfg.Events.AMQPURL, a.cfg.Events.Exchange, a.cfg.Events.Queue)
		if err != nil {
			// Events are best effort; the ledger works without a broker.
			slog.Warn("change events disabled", "error", err)
		} else {
			publisher = amqp
		}
	}

	closeAll := func() {
		if err := publisher.Close(); err != nil {
			slog.Warn("failed to close event publisher", "error", err)
		}
		if err := repo.Close(); err != nil {
			slog.Warn("failed to close storage", "error", err)
		}
	}

	l, err := ledger.Open(ctx, repo,
		ledger.WithPublisher(publisher),
		ledger.WithLogger(slog.Default()))
	if err != nil {
		closeAll()
		return nil, nil, err
	}
	return l, closeAll, nil
}

// filterFlags are the transaction filter options shared by list, dashboard and export.
type filterFlags struct {
	txType   string
	category string
	from     string
	to       string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.txType, "type", model.FilterAll, "transaction type (all, income, expense)")
	cmd.Flags().StringVar(&f.category, "category", model.FilterAll, "category id or all")
	cmd.Flags().StringVar(&f.from, "from", "", "first date to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "last date to include (YYYY-MM-DD)")
}

func (f *filterFlags) filter() (model.Filter, error) {
	from, err := model.ParseDate(f.from)
	if err != nil {
		return model.Filter{}, err
	}
	to, err := model.ParseDate(f.to)
	if err != nil {
		return model.Filter{}, err
	}

	filter := model.Filter{
		Type:     strings.ToLower(strings.TrimSpace(f.txType)),
		Category: strings.TrimSpace(f.category),
		From:     from,
		To:       to,
	}.Normalize()
	if err := filter.Validate(); err != nil {
		return model.Filter{}, err
	}
	return filter, nil
}

// categoryLabel renders a category id with its name. Dangling ids are kept visible.
func categoryLabel(l *ledger.Ledger, id string) string {
	if name := l.CategoryName(id); name != "" {
		return name
	}
	if id == "" {
		return "(none)"
	}
	return id + " (unknown)"
}
