package builder

import (
	"encoding/binary"

	"github.com/dot5enko/repak/schema"
)

type relationTable struct {
	relations []schema.Relation
	starts    []uint32
	counts    []uint32
}

// computeRelations reads back every guid an asset uses. When the guid names an
// asset of this container, the user is recorded in the target's relation list.
// Lists are laid out in asset order, users within a list in asset order too.
func (b *Builder) computeRelations() relationTable {

	users := make([][]uint32, len(b.assets))

	for userIdx, entry := range b.assets {
		for i := entry.UsesStart; i < entry.UsesStart+entry.UsesCount; i++ {
			d := b.guidDescriptors[i]
			page := b.blocks[d.PageIndex].data
			used := binary.LittleEndian.Uint64(page[d.PageOffset:])

			target, local := b.guidIndex[used]
			if !local {
				continue
			}

			list := users[target]
			if len(list) > 0 && list[len(list)-1] == uint32(userIdx) {
				continue
			}
			users[target] = append(list, uint32(userIdx))
		}
	}

	table := relationTable{
		starts: make([]uint32, len(b.assets)),
		counts: make([]uint32, len(b.assets)),
	}

	for target, list := range users {
		table.starts[target] = uint32(len(table.relations))
		table.counts[target] = uint32(len(list))
		for _, user := range list {
			table.relations = append(table.relations, schema.Relation{FileID: user})
		}
	}

	return table
}
