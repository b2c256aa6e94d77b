package types

import (
	"bytes"

	"github.com/eth2030/receiptcodec/rlp"
)

// Log is a contract log event as it appears in a receipt: the emitting
// address, the indexed topics and the unindexed data. Field order is the
// RLP field order.
type Log struct {
	Address Address
	Topics  []Hash
	Data    []byte
}

// NewLog returns a log with the given fields. The slices are retained.
func NewLog(addr Address, topics []Hash, data []byte) *Log {
	return &Log{Address: addr, Topics: topics, Data: data}
}

func (l *Log) topicsSize() int {
	return len(l.Topics) * (1 + HashLength)
}

func (l *Log) payloadSize() int {
	return l.Address.EncodingSize() + rlp.ListSize(l.topicsSize()) + rlp.StringSize(l.Data)
}

// EncodingSize implements rlp.Encodable.
func (l *Log) EncodingSize() int {
	return rlp.ListSize(l.payloadSize())
}

// AppendRLP implements rlp.Encodable: [address, [topic...], data].
func (l *Log) AppendRLP(dst []byte) []byte {
	dst = rlp.AppendListHeader(dst, l.payloadSize())
	dst = l.Address.AppendRLP(dst)
	dst = rlp.AppendListHeader(dst, l.topicsSize())
	for _, topic := range l.Topics {
		dst = topic.AppendRLP(dst)
	}
	return rlp.AppendBytes(dst, l.Data)
}

// DecodeRLP implements rlp.Decodable. The decoded log owns its data.
func (l *Log) DecodeRLP(c *rlp.Cursor) error {
	var dec Log
	err := rlp.DecodeList(c, func(c *rlp.Cursor) error {
		if err := dec.Address.DecodeRLP(c); err != nil {
			return err
		}
		err := rlp.DecodeListItems(c, func(c *rlp.Cursor) error {
			var topic Hash
			if err := topic.DecodeRLP(c); err != nil {
				return err
			}
			dec.Topics = append(dec.Topics, topic)
			return nil
		})
		if err != nil {
			return err
		}
		data, err := c.Bytes()
		if err != nil {
			return err
		}
		dec.Data = bytes.Clone(data)
		return nil
	})
	if err != nil {
		return err
	}
	*l = dec
	return nil
}

// Equal compares the consensus fields of two logs. A nil and an empty
// topic or data slice are equal, as they share an encoding.
func (l *Log) Equal(other *Log) bool {
	if l == nil || other == nil {
		return l == other
	}
	if l.Address != other.Address || len(l.Topics) != len(other.Topics) {
		return false
	}
	for i := range l.Topics {
		if l.Topics[i] != other.Topics[i] {
			return false
		}
	}
	return bytes.Equal(l.Data, other.Data)
}

// Copy returns a deep copy of the log.
func (l *Log) Copy() *Log {
	if l == nil {
		return nil
	}
	cpy := &Log{Address: l.Address, Data: bytes.Clone(l.Data)}
	if l.Topics != nil {
		cpy.Topics = append(make([]Hash, 0, len(l.Topics)), l.Topics...)
	}
	return cpy
}
