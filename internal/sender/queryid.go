package sender

import (
	"errors"
)

// Query IDs of the highload v3 wallet contract are composed of a 13-bit shift
// and a 10-bit bitnumber. The contract tracks used bitnumbers per shift, so
// IDs must be issued strictly sequentially and the space is finite.
const (
	bitNumberSize = 10
	maxShift      = 8191 // (2^13) - 1
	maxBitNumber  = 1022 // (2^10) - 2, the last slot is reserved
)

// QueryID is a single position in the highload wallet's query-id sequence.
// The zero value is the start of the sequence.
type QueryID struct {
	shift     uint64
	bitnumber uint64
}

var ErrQueryIDExhausted = errors.New("overload: cannot generate more query ids")

// Next returns the position following q, or ErrQueryIDExhausted once the
// sequence is used up.
func (q QueryID) Next() (QueryID, error) {
	shift := q.shift
	bitnumber := q.bitnumber + 1

	if shift == maxShift && bitnumber > maxBitNumber-1 {
		return QueryID{}, ErrQueryIDExhausted
	}

	if bitnumber > maxBitNumber {
		bitnumber = 0
		shift++
		if shift > maxShift {
			return QueryID{}, ErrQueryIDExhausted
		}
	}

	return QueryID{shift: shift, bitnumber: bitnumber}, nil
}

// HasNext reports whether the sequence still has positions after q.
func (q QueryID) HasNext() bool {
	return !(q.bitnumber >= maxBitNumber-1 && q.shift == maxShift)
}

// Value is the uint64 form passed to the wallet contract.
func (q QueryID) Value() uint64 {
	return (q.shift << bitNumberSize) + q.bitnumber
}

// Seqno is the flat ordinal of q in the sequence.
func (q QueryID) Seqno() uint64 {
	return q.bitnumber + q.shift*maxBitNumber
}

// QueryIDFromValue restores a position from its uint64 form.
func QueryIDFromValue(value uint64) (QueryID, error) {
	shift := value >> bitNumberSize
	bitnumber := value & ((1 << bitNumberSize) - 1)

	if shift > maxShift || bitnumber > maxBitNumber {
		return QueryID{}, errors.New("invalid query id value")
	}

	return QueryID{shift: shift, bitnumber: bitnumber}, nil
}

// QueryIDFromSeqno restores a position from its flat ordinal.
func QueryIDFromSeqno(seqno uint64) QueryID {
	return QueryID{
		shift:     seqno / maxBitNumber,
		bitnumber: seqno % maxBitNumber,
	}
}
