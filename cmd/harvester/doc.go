// Package main hosts the harvester entrypoint.
//
// Architecture overview:
//   - CLI: cmd wires cobra subcommands; 'harvest' runs one complete scrape of the configured source and
//     'sources' lists the registered source sites. Configuration is loaded once through Viper (file plus
//     HARVESTER_* env overrides) and handed to subcommands via the command context together with the zap logger.
//   - Discovery & workers: internal/harvest walks the source's paginated listing index, deduplicates the URL
//     set, splits it into contiguous near-equal subsets and runs one worker goroutine per subset. Workers pace
//     themselves with a randomized polite delay and contain every per-URL failure; a crashing worker is
//     recovered without touching its siblings' results.
//   - Extraction: internal/extractor holds one variant per source site behind a shared capability interface.
//     Variants translate site-specific markup and label vocabulary into raw string fields; orchestration code
//     never knows which site it serves.
//   - Normalization: internal/normalize converts raw fields into typed values against the fixed schema in
//     internal/listing. Field failures stay local; records missing a usable mandatory field are dropped.
//   - Persistence: internal/sink writes a run either to a per-collection JSON file or, through the bounded
//     writer, to the Postgres document store in internal/store. The bounded writer keeps the store under its
//     byte quota by evicting whole scrape dates, oldest first, before every write.
//   - Observability: zap structured logs carry run, source and worker identifiers; optional Prometheus
//     counters and gauges are served on /metrics alongside /healthz for the duration of a run.
//
// Operational notes:
//   - Fetching defaults to the Colly HTTP client; set harvest.headless to render JavaScript-heavy sources
//     through headless Chrome instead.
//   - SIGINT/SIGTERM cancel the run context; workers stop at the next URL boundary and whatever was already
//     scraped is still normalized and persisted.
//   - Run locally: go run ./cmd/harvester harvest --config config.yaml (or rely solely on env overrides).
package main
