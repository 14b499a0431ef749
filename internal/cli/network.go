package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/aidanlsb/vaultkit/internal/airtable"
	"github.com/aidanlsb/vaultkit/internal/config"
	"github.com/aidanlsb/vaultkit/internal/sqlitestore"
	"github.com/aidanlsb/vaultkit/internal/syncer"
	"github.com/aidanlsb/vaultkit/internal/tagger"
	"github.com/aidanlsb/vaultkit/internal/ui"
	"github.com/aidanlsb/vaultkit/internal/vault"
)

var (
	syncTag    string
	syncStore  storeFlag
	syncDB     string
	syncDryRun bool
)

// lookupEnv reads the process environment. Tests replace it.
var lookupEnv config.LookupFunc = os.LookupEnv

// storeFlag is the --store value: empty means "use the config".
type storeFlag string

var _ pflag.Value = (*storeFlag)(nil)

func (s *storeFlag) String() string { return string(*s) }

func (s *storeFlag) Set(v string) error {
	switch v {
	case "", config.StoreAirtable, config.StoreSQLite:
		*s = storeFlag(v)
		return nil
	}
	return fmt.Errorf("must be %q or %q", config.StoreAirtable, config.StoreSQLite)
}

func (s *storeFlag) Type() string { return "store" }

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Mirror Person notes into a people table",
}

var airtableSyncCmd = &cobra.Command{
	Use:   "airtable-sync",
	Short: "Upsert tagged notes into the Airtable people table",
	Long: `Collects every note tagged Person (or --tag) under --directory and
upserts one record per note, matched on Name, in a single batch.

Airtable credentials come from the environment, then from the .env file
named by ENV_FILE_PATH (default ./.env):
  AIRTABLE_PERSONAL_ACCESS_TOKEN
  AIRTABLE_NETWORK_BASE_ID
  AIRTABLE_NETWORK_PEOPLE_TABLE_ID
  AIRTABLE_API_URL (optional)

With --store sqlite the records go to a local database instead.

Examples:
  vk network airtable-sync --directory ~/vault
  vk network airtable-sync -d ~/vault --store sqlite --db /tmp/people.db
  vk network airtable-sync -d ~/vault --dry-run --json`,
	Args: cobra.NoArgs,
	RunE: runAirtableSync,
}

var networkRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List the sync runs recorded in a SQLite mirror",
	Args:  cobra.NoArgs,
	RunE:  runNetworkRuns,
}

func runAirtableSync(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	c := getConfig()

	tag := c.Sync.Tag
	if syncTag != "" {
		tag = syncTag
	}
	tag, err := tagger.NormalizeTag(tag)
	if err != nil {
		return fail(cmd, err)
	}
	kind := c.Sync.Store
	if syncStore != "" {
		kind = string(syncStore)
	}
	if err := vault.ValidateRoot(directory); err != nil {
		return fail(cmd, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	var store syncer.RecordStore
	if !syncDryRun {
		opened, closeStore, code, err := openRecordStore(kind, directory)
		if err != nil {
			if code == "" {
				return fail(cmd, err)
			}
			return handleError(cmd, code, err, "")
		}
		defer func() {
			if cerr := closeStore(); cerr != nil {
				diag.Warn("close store", "err", cerr)
			}
		}()
		store = opened
	}

	opts := syncer.Options{
		Predicate: syncer.HasTag(tag),
		Rules:     c.FieldRules(),
		Walk:      walkOptions(),
		DryRun:    syncDryRun,
		StoreName: kind,
		Logger:    diag,
	}

	start := time.Now()
	spinner := ui.NewSpinner(cmd.ErrOrStderr(), fmt.Sprintf("Syncing %s notes to %s", tag, kind))
	if !syncDryRun && !isJSONOutput() {
		spinner.Start()
	}
	result, err := syncer.Run(ctx, store, directory, opts)
	if !syncDryRun && !isJSONOutput() {
		spinner.Stop()
	}
	if err != nil {
		return fail(cmd, err)
	}

	if isJSONOutput() {
		var warnings []Warning
		if len(result.Records) == 0 {
			warnings = append(warnings, Warning{
				Code:    "NO_RECORDS",
				Message: fmt.Sprintf("no notes tagged %s", tag),
				Path:    directory,
			})
		}
		outputSuccessWithWarnings(out, result, warnings, &Meta{
			Count:      len(result.Records),
			DurationMs: time.Since(start).Milliseconds(),
		})
		return nil
	}

	if syncDryRun {
		for _, rec := range result.Records {
			data, err := json.Marshal(rec)
			if err != nil {
				return fail(cmd, err)
			}
			fmt.Fprintln(out, string(data))
		}
		fmt.Fprintln(out, ui.SyncPreview(len(result.Records)))
		return nil
	}

	fmt.Fprintln(out, ui.SyncDone(len(result.Records), kind, result.Summary.Created, result.Summary.Updated))
	return nil
}

// openRecordStore builds the store named by kind. The returned func closes
// it. A non-empty code overrides the classified error code.
func openRecordStore(kind, root string) (syncer.RecordStore, func() error, string, error) {
	switch kind {
	case config.StoreSQLite:
		path := syncDB
		if path == "" {
			path = getConfig().SQLitePath(root)
		}
		store, err := sqlitestore.Open(path)
		if err != nil {
			return nil, nil, ErrStore, err
		}
		diag.Debug("sqlite store opened", "path", path)
		return store, store.Close, "", nil

	default:
		env, err := config.LoadEnv(lookupEnv, config.EnvFilePath(lookupEnv))
		if err != nil {
			return nil, nil, ErrConfigInvalid, err
		}
		settings, err := env.Airtable(airtable.DefaultBaseURL)
		if err != nil {
			return nil, nil, "", err
		}
		client := airtable.New(settings.Token, airtable.WithBaseURL(settings.APIURL))
		diag.Debug("airtable store", "api", settings.APIURL, "base", settings.BaseID, "table", settings.TableID)
		return client.Table(settings.BaseID, settings.TableID), func() error { return nil }, "", nil
	}
}

func runNetworkRuns(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	path := syncDB
	if path == "" {
		path = getConfig().SQLitePath(directory)
	}
	if _, err := os.Stat(path); err != nil {
		return fail(cmd, err)
	}
	store, err := sqlitestore.Open(path)
	if err != nil {
		return handleError(cmd, ErrStore, err, "")
	}
	defer store.Close()

	runs, err := store.Runs(cmd.Context())
	if err != nil {
		return handleError(cmd, ErrStore, err, "")
	}

	if isJSONOutput() {
		outputSuccess(out, runs, &Meta{Count: len(runs)})
		return nil
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, ui.Hint("no sync runs recorded"))
		return nil
	}
	for _, r := range runs {
		fmt.Fprintln(out, ui.SyncRun(r.StartedAt, r.ID, r.Records, r.Created, r.Updated))
	}
	return nil
}

func init() {
	addWalkFlags(airtableSyncCmd)
	airtableSyncCmd.Flags().StringVarP(&syncTag, "tag", "t", "", "Tag that selects the synced notes (default from config, \"Person\")")
	airtableSyncCmd.Flags().Var(&syncStore, "store", "Record store: airtable or sqlite (default from config)")
	airtableSyncCmd.Flags().StringVar(&syncDB, "db", "", "SQLite database for --store sqlite (default <directory>/.vaultkit/sync.db)")
	airtableSyncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Collect and print records without sending them")

	networkRunsCmd.Flags().StringVarP(&directory, "directory", "d", "", "Vault whose default database is read")
	networkRunsCmd.Flags().StringVar(&syncDB, "db", "", "SQLite database to read")

	networkCmd.AddCommand(airtableSyncCmd)
	networkCmd.AddCommand(networkRunsCmd)
	rootCmd.AddCommand(networkCmd)
}
