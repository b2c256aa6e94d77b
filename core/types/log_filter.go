package types

// LogFilter selects logs by emitting address and topics. An empty address
// list matches any address. Topics is a list of positions; each position
// lists acceptable values (OR within a position, AND across positions), and
// an empty position matches anything.
type LogFilter struct {
	Addresses []Address
	Topics    [][]Hash
}

// bloomMatches reports whether a bloom may contain logs matching the filter.
// A false result is definitive.
func (f *LogFilter) bloomMatches(bloom Bloom) bool {
	if len(f.Addresses) > 0 {
		found := false
		for _, addr := range f.Addresses {
			if bloom.Test(addr[:]) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, position := range f.Topics {
		if len(position) == 0 {
			continue
		}
		found := false
		for _, topic := range position {
			if bloom.Test(topic[:]) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Match reports whether a single log satisfies the filter.
func (f *LogFilter) Match(log *Log) bool {
	if len(f.Addresses) > 0 {
		found := false
		for _, addr := range f.Addresses {
			if log.Address == addr {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for i, position := range f.Topics {
		if len(position) == 0 {
			continue
		}
		if i >= len(log.Topics) {
			return false
		}
		found := false
		for _, topic := range position {
			if log.Topics[i] == topic {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// FilteredLog is a log matched by FilterLogs with its location in the block.
type FilteredLog struct {
	*Log
	TxIndex  uint
	LogIndex uint // index within the block
}

// FilterLogs returns the logs of a block's receipts matching f, in block
// order. Receipts whose bloom rules out a match are skipped without looking
// at their logs.
func FilterLogs(receipts Receipts, f LogFilter) []FilteredLog {
	var (
		out      []FilteredLog
		logIndex uint
	)
	for txIndex, r := range receipts {
		if !f.bloomMatches(r.Bloom) {
			logIndex += uint(len(r.Logs))
			continue
		}
		for _, l := range r.Logs {
			if f.Match(l) {
				out = append(out, FilteredLog{Log: l, TxIndex: uint(txIndex), LogIndex: logIndex})
			}
			logIndex++
		}
	}
	return out
}
