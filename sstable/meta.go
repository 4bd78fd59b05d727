package sstable

import (
	"encoding/binary"
	"fmt"
)

// BlockMeta is the per-block descriptor persisted in the SST footer:
// the block's absolute file offset plus its first and last key, used
// both to find candidate blocks (find_block_idx) and to assert
// ordering across blocks.
type BlockMeta struct {
	Offset   uint32
	FirstKey []byte
	LastKey  []byte
}

// encodeBlockMeta writes the meta section described in spec §6:
//
//	u32 count || count × (u32 offset || u16 first_key_len || first_key || u16 last_key_len || last_key)
func encodeBlockMeta(meta []BlockMeta) []byte {
	buf := make([]byte, 0, 4+len(meta)*16)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(meta)))
	for _, m := range meta {
		buf = binary.BigEndian.AppendUint32(buf, m.Offset)
		buf = binary.BigEndian.AppendUint16(buf, uint16(len(m.FirstKey)))
		buf = append(buf, m.FirstKey...)
		buf = binary.BigEndian.AppendUint16(buf, uint16(len(m.LastKey)))
		buf = append(buf, m.LastKey...)
	}
	return buf
}

// decodeBlockMeta is encodeBlockMeta's exact inverse.
func decodeBlockMeta(data []byte) ([]BlockMeta, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("sstable: meta section truncated, have %d bytes", len(data))
	}
	count := binary.BigEndian.Uint32(data)
	pos := 4

	meta := make([]BlockMeta, 0, count)
	for i := uint32(0); i < count; i++ {
		if pos+4+2 > len(data) {
			return nil, fmt.Errorf("sstable: meta entry %d truncated", i)
		}
		offset := binary.BigEndian.Uint32(data[pos:])
		pos += 4

		firstKeyLen := int(binary.BigEndian.Uint16(data[pos:]))
		pos += 2
		if pos+firstKeyLen+2 > len(data) {
			return nil, fmt.Errorf("sstable: meta entry %d first_key truncated", i)
		}
		firstKey := append([]byte(nil), data[pos:pos+firstKeyLen]...)
		pos += firstKeyLen

		lastKeyLen := int(binary.BigEndian.Uint16(data[pos:]))
		pos += 2
		if pos+lastKeyLen > len(data) {
			return nil, fmt.Errorf("sstable: meta entry %d last_key truncated", i)
		}
		lastKey := append([]byte(nil), data[pos:pos+lastKeyLen]...)
		pos += lastKeyLen

		meta = append(meta, BlockMeta{Offset: offset, FirstKey: firstKey, LastKey: lastKey})
	}

	return meta, nil
}
