// Package syncer collects records from tagged notes and upserts them into a
// record store.
package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/aidanlsb/vaultkit/internal/fieldmap"
	"github.com/aidanlsb/vaultkit/internal/logger"
	"github.com/aidanlsb/vaultkit/internal/note"
	"github.com/aidanlsb/vaultkit/internal/tags"
	"github.com/aidanlsb/vaultkit/internal/vault"
)

// DefaultTag selects the notes synced when no predicate is given.
const DefaultTag = "Person"

// KeyFields are the columns records are matched on.
var KeyFields = []string{fieldmap.NameColumn}

// UpsertSummary reports what a store did with a batch.
type UpsertSummary struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// RecordStore accepts a batch of records matched on keyFields.
type RecordStore interface {
	BatchUpsert(ctx context.Context, records []*fieldmap.Record, keyFields []string) (UpsertSummary, error)
}

// Predicate selects notes by their tag set.
type Predicate func(tags.Set) bool

// HasTag selects notes carrying tag exactly.
func HasTag(tag string) Predicate {
	return func(s tags.Set) bool { return s.Has(tag) }
}

// Options controls a sync run.
type Options struct {
	// Predicate defaults to HasTag(DefaultTag).
	Predicate Predicate

	// Rules defaults to fieldmap.DefaultRules. A non-nil empty slice maps
	// only the Name column.
	Rules []fieldmap.Rule

	Walk vault.Options

	// DryRun collects records without calling the store.
	DryRun bool

	// StoreName is only used for logging.
	StoreName string

	Logger *logger.Logger
}

func (o *Options) defaults() {
	if o.Predicate == nil {
		o.Predicate = HasTag(DefaultTag)
	}
	if o.Rules == nil {
		o.Rules = fieldmap.DefaultRules
	}
	if o.Logger == nil {
		o.Logger = logger.Discard()
	}
}

// Result is the outcome of Run.
type Result struct {
	Records  []*fieldmap.Record `json:"records"`
	Summary  UpsertSummary      `json:"summary"`
	Upserted bool               `json:"upserted"`
}

// Collect walks root and returns one record per selected note, in walk
// order. A later note with the same name replaces the earlier record but
// keeps its position.
func Collect(root string, opts Options) ([]*fieldmap.Record, error) {
	opts.defaults()
	log := opts.Logger

	walkOpts := opts.Walk
	userSkip := walkOpts.OnSkip
	walkOpts.OnSkip = func(path string) {
		if userSkip != nil {
			userSkip(path)
		}
		log.Skipped(path, "not a note")
	}

	paths, err := vault.Notes(root, &walkOpts)
	if err != nil {
		return nil, err
	}
	log.WalkStarted(root, walkOpts.Exclude)

	var records []*fieldmap.Record
	index := make(map[string]int)

	for path, err := range paths {
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", path, err)
		}

		n, err := note.Read(path)
		if err != nil {
			return nil, err
		}
		if !opts.Predicate(tags.FromNote(n)) {
			continue
		}

		rec := fieldmap.Map(n.Name, n.Frontmatter, opts.Rules)
		if i, ok := index[n.Name]; ok {
			records[i] = rec
			log.RecordCollected(path, n.Name, true)
			continue
		}
		index[n.Name] = len(records)
		records = append(records, rec)
		log.RecordCollected(path, n.Name, false)
	}

	return records, nil
}

// Run collects records under root and sends them to store in one
// BatchUpsert call. Store errors are returned as they are.
func Run(ctx context.Context, store RecordStore, root string, opts Options) (*Result, error) {
	opts.defaults()
	start := time.Now()

	records, err := Collect(root, opts)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []*fieldmap.Record{}
	}

	result := &Result{Records: records}
	if opts.DryRun {
		return result, nil
	}

	summary, err := store.BatchUpsert(ctx, records, KeyFields)
	if err != nil {
		return nil, err
	}
	result.Summary = summary
	result.Upserted = true

	opts.Logger.SyncCompleted(opts.StoreName, len(records), summary.Created, summary.Updated, time.Since(start))
	return result, nil
}
