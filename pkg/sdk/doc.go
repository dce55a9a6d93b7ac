// Package collections embeds the collections search pipeline in a Go program.
//
// Items are read from a Redis, Valkey or Postgres metadata source, indexed
// in-process with BM25, and queried with an optional cited answer
// synthesized by a caller-supplied text generation provider.
//
//	client, _ := collections.New(ctx,
//	    collections.WithValkey("localhost:6379", ""),
//	    collections.WithSnapshotDir("./data/snapshot"),
//	    collections.WithCompleter(myCompleter, "gpt-4.1-mini"),
//	)
//	defer client.Close()
//
//	_, _ = client.Rebuild(ctx)
//	resp, _ := client.Search(ctx, "ramen in tokyo",
//	    collections.TopK(5),
//	    collections.Category("Food"),
//	)
//
// Scores follow the "more negative is better" convention; MinRelevanceScore
// keeps only results scoring strictly below the threshold.
package collections
