package sender

import (
	"testing"
)

const maxQueryID = 8388605

func TestQueryID_SequentialGeneration(t *testing.T) {
	var err error
	q := QueryID{}
	expected := uint64(0)

	for i := 0; i < 10; i++ {
		if q.Value() != expected {
			t.Errorf("expected query id %v, got %v", expected, q.Value())
		}

		if !q.HasNext() {
			t.Fatal("unexpectedly ran out of query ids")
		}

		q, err = q.Next()
		if err != nil {
			t.Fatal("unexpected error on next id generation")
		}
		expected++
	}
}

func TestQueryID_ValueRoundTrip(t *testing.T) {
	q, err := QueryIDFromValue(maxQueryID - 1)
	if err != nil {
		t.Fatalf("unexpected error in QueryIDFromValue: %v", err)
	}

	final, err := q.Next()
	if err != nil {
		t.Fatalf("unexpected error for Next: %v", err)
	}

	if final.Value() != maxQueryID {
		t.Fatalf("unexpected max query id, want: %d, got: %d", maxQueryID, final.Value())
	}
}

func TestQueryID_SeqnoRoundTrip(t *testing.T) {
	q := QueryIDFromSeqno(12345)

	if q.Seqno() != 12345 {
		t.Fatalf("seqno round trip failed, got %d", q.Seqno())
	}
}

func TestQueryID_Exhaustion(t *testing.T) {
	// Start close to the end of the sequence: shift=8191, bitnumber=1019.
	nearEnd := QueryIDFromSeqno(8191*1022 + 1019)

	next, err := nearEnd.Next()
	if err != nil {
		t.Fatalf("unexpected error for Next: %v", err)
	}

	if !next.HasNext() {
		t.Fatal("should still have one last query id left")
	}

	final, err := next.Next()
	if err != nil {
		t.Fatalf("unexpected error for Next: %v", err)
	}

	if final.HasNext() {
		t.Fatal("should NOT have more query ids after exhausting the range")
	}

	if final.Value() != maxQueryID {
		t.Fatalf("unexpected max query id, want: %d, got: %d", maxQueryID, final.Value())
	}

	if _, err = final.Next(); err == nil {
		t.Fatal("expected the last Next to fail but it didn't")
	}
}
