// Package journal persists executed trades to a local pebble store so a
// restarted process can replay the tape. The engine itself stays in-memory;
// the journal is strictly downstream of matching.
package journal

import (
	"encoding/binary"
	"errors"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/google/uuid"

	"github.com/efreitasn/limitbook/internal/domain"
)

// record layout: [tradeID:16][bidID:8][askID:8][bidPrice:8][askPrice:8][qty:8][executedAt:8]
const recordSize = 16 + 8 + 8 + 8 + 8 + 8 + 8

// Journal is an append-only trade log keyed by sequence number.
type Journal struct {
	db   *pebble.DB
	mu   sync.Mutex
	next uint64
}

// Open opens (or creates) the journal at dir and positions the sequence
// counter after the last persisted record.
func Open(dir string) (*Journal, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, err
	}

	j := &Journal{db: db}

	iter, err := db.NewIter(nil)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if iter.Last() {
		j.next = binary.BigEndian.Uint64(iter.Key()) + 1
	}
	if err := iter.Close(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return j, nil
}

// Close closes the underlying store.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Append durably writes one execution.
func (j *Journal) Append(e domain.Execution) error {
	value, err := encodeRecord(e)
	if err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, j.next)
	if err := j.db.Set(key, value, pebble.Sync); err != nil {
		return err
	}
	j.next++
	return nil
}

// Replay invokes fn for every persisted execution in append order.
// Replay stops at the first error from fn.
func (j *Journal) Replay(fn func(domain.Execution) error) error {
	iter, err := j.db.NewIter(nil)
	if err != nil {
		return err
	}
	defer iter.Close()

	for valid := iter.First(); valid; valid = iter.Next() {
		e, err := decodeRecord(iter.Value())
		if err != nil {
			return err
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return iter.Error()
}

// Len returns the number of persisted executions.
func (j *Journal) Len() uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.next
}

func encodeRecord(e domain.Execution) ([]byte, error) {
	id, err := uuid.Parse(e.TradeID)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, recordSize)
	copy(buf[0:16], id[:])
	binary.BigEndian.PutUint64(buf[16:24], e.Bid.OrderID)
	binary.BigEndian.PutUint64(buf[24:32], e.Ask.OrderID)
	binary.BigEndian.PutUint64(buf[32:40], uint64(e.Bid.Price))
	binary.BigEndian.PutUint64(buf[40:48], uint64(e.Ask.Price))
	binary.BigEndian.PutUint64(buf[48:56], uint64(e.Bid.Quantity))
	binary.BigEndian.PutUint64(buf[56:64], uint64(e.ExecutedAt.UnixNano()))
	return buf, nil
}

func decodeRecord(b []byte) (domain.Execution, error) {
	if len(b) != recordSize {
		return domain.Execution{}, errors.New("invalid journal record length")
	}

	var id uuid.UUID
	copy(id[:], b[0:16])
	quantity := domain.Quantity(binary.BigEndian.Uint64(b[48:56]))

	return domain.Execution{
		TradeID: id.String(),
		Bid: domain.TradeInfo{
			OrderID:  binary.BigEndian.Uint64(b[16:24]),
			Price:    domain.Price(binary.BigEndian.Uint64(b[32:40])),
			Quantity: quantity,
		},
		Ask: domain.TradeInfo{
			OrderID:  binary.BigEndian.Uint64(b[24:32]),
			Price:    domain.Price(binary.BigEndian.Uint64(b[40:48])),
			Quantity: quantity,
		},
		ExecutedAt: time.Unix(0, int64(binary.BigEndian.Uint64(b[56:64]))),
	}, nil
}
