package cli

import (
	"bufio"
	"context"
	"log"
	"os"

	"github.com/pantrysync/restock/internal/client/config"
	"github.com/pantrysync/restock/internal/client/mirror"
	"github.com/pantrysync/restock/internal/client/models"
	"github.com/pantrysync/restock/internal/client/services"
	"github.com/pantrysync/restock/internal/client/store"
	syncer "github.com/pantrysync/restock/internal/client/sync"
	"github.com/pantrysync/restock/internal/logging"

	_ "modernc.org/sqlite"
)

// App wires the client together: local store, mirror client, orchestrator
// and item service behind an interactive REPL.
type App struct {
	config *config.Config
	items  *services.ItemService
	store  *store.Store
	orch   *syncer.Orchestrator
	reader *bufio.Reader

	// lastListing remembers the most recent list/history output so users
	// can address items by their printed number.
	lastListing []models.Item
}

// NewApp builds the client. identifier is the external barcode-catalog
// collaborator; nil means barcode scans fall back to manual entry.
func NewApp(c *config.Config, identifier services.Identifier) (*App, error) {
	ctx := context.Background()

	logger := logging.NewJSON(os.Stderr)

	db, err := store.OpenDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	st := store.New(store.NewSQLiteKV(db), logger)
	mc := mirror.New(c.MirrorBaseURL, c.RequestTimeout, logger)
	orch := syncer.New(st, mc, logger, c.SyncInterval)
	items := services.NewItemService(st, orch, identifier, logger)

	return &App{
		config: c,
		items:  items,
		store:  st,
		orch:   orch,
		reader: bufio.NewReader(os.Stdin),
	}, nil
}

// Run performs the startup maintenance sweep, starts the background sync
// loop, and hands control to the REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The sweep must finish before the sync loop starts, so the startup
	// pull cannot interleave with it and the first listing is swept.
	a.items.Load(ctx)

	go a.orch.Run(ctx)

	log.Println("Welcome to restock (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}

func (a *App) getStatus() string {
	if a.store.SyncCode(context.Background()) == "" {
		return "(local)"
	}
	return "(" + string(a.orch.State()) + ")"
}
