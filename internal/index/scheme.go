package index

var (
	bPosts   = []byte("posts")    // slug -> post JSON
	bIdxDate = []byte("idx_date") // invTime + order + 0x00 + slug -> 1
	bIdxCat  = []byte("idx_cat")  // category -> sub-bucket of date keys
	bMeta    = []byte("meta")     // snapshot bookkeeping

	bTopics    = []byte("topics")     // cluster id -> cluster JSON
	bIdxTopics = []byte("idx_topics") // invTime + invScore + 0x00 + id -> 1
	bRuns      = []byte("runs")       // run id -> run JSON

	keySnapshot = []byte("snapshot_hash")
	keyBuiltAt  = []byte("built_at")
)
