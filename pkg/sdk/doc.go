// Package lexlsh embeds the lexlsh fingerprint index in a Go program, talking to
// Redis or Valkey directly instead of through the HTTP service.
//
// Vectors are reduced to lexical LSH fingerprints (short string tokens) and stored in a
// search index, so nearest-neighbour candidates are found by plain term matching.
//
//	client, _ := lexlsh.New(ctx, lexlsh.WithRedis("localhost:6379", ""))
//	defer client.Close()
//
//	docs := client.Documents()
//	_, created, _ := docs.Upsert(ctx, lexlsh.Document{ID: "a", Vector: vec})
//	hits, _ := client.Search().Vector(ctx, query, lexlsh.SearchOptions{Limit: 10})
//
// Text input needs an Embedder:
//
//	client, _ := lexlsh.New(ctx,
//	    lexlsh.WithValkey("localhost:6379", ""),
//	    lexlsh.WithEmbedder(myEmbedder),
//	)
//	hits, _ := client.Search().Text(ctx, "red running shoes", lexlsh.SearchOptions{})
package lexlsh
