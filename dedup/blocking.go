// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package dedup

// UnknownBlock collects records without a province
const UnknownBlock = "UNKNOWN"

// Block is a group of records sharing a blocking key
type Block struct {
	Key     string
	Records []*PersonRecord
}

// Pairs is the number of comparisons the block needs
func (b Block) Pairs() int {
	n := len(b.Records)
	return n * (n - 1) / 2
}

// BlockByProvince groups records by province. Blocks come back in the
// order their key was first seen, and records keep their input order.
//
// Only records in the same block are ever compared, so duplicates
// registered under different provinces are not found.
func BlockByProvince(records []PersonRecord) []Block {
	index := make(map[string]int)
	var blocks []Block
	for i := range records {
		key, ok := value(records[i].Province)
		if !ok {
			key = UnknownBlock
		}

		pos, seen := index[key]
		if !seen {
			pos = len(blocks)
			index[key] = pos
			blocks = append(blocks, Block{Key: key})
		}
		blocks[pos].Records = append(blocks[pos].Records, &records[i])
	}
	return blocks
}
