package metrics

// Pre-defined metrics of the receipt codec and store. All metrics live in
// DefaultRegistry.

var (
	// ---- Codec metrics ----

	// ReceiptsEncoded counts receipts encoded through the receipt codec.
	ReceiptsEncoded = DefaultRegistry.Counter("rlp.receipts.encoded")
	// ReceiptBytesEncoded counts bytes produced by the receipt codec.
	ReceiptBytesEncoded = DefaultRegistry.Counter("rlp.receipts.encoded_bytes")
	// ReceiptsDecoded counts receipts decoded through the receipt codec.
	ReceiptsDecoded = DefaultRegistry.Counter("rlp.receipts.decoded")
	// ReceiptDecodeErrors counts rejected receipt encodings.
	ReceiptDecodeErrors = DefaultRegistry.Counter("rlp.receipts.decode_errors")

	// ---- Store metrics ----

	// ReceiptsWritten counts receipt lists written to the key-value store.
	ReceiptsWritten = DefaultRegistry.Counter("rawdb.receipts.written")
	// ReceiptBytesWritten counts encoded receipt bytes written to the store.
	ReceiptBytesWritten = DefaultRegistry.Counter("rawdb.receipts.bytes_written")
	// ReceiptsRead counts receipt lists read from the key-value store.
	ReceiptsRead = DefaultRegistry.Counter("rawdb.receipts.read")
	// AncientItems tracks the number of items in the ancient receipt table.
	AncientItems = DefaultRegistry.Gauge("rawdb.ancient.items")
	// AncientBytes tracks the size of the ancient receipt data file.
	AncientBytes = DefaultRegistry.Gauge("rawdb.ancient.bytes")
	// AncientRetrieveTime records ancient item retrieval time in microseconds.
	AncientRetrieveTime = DefaultRegistry.Histogram("rawdb.ancient.retrieve_us")
)
