package billing

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateNextSequence(t *testing.T) {
	a := NewAllocator(newMemKV())
	for n := 1; n <= 12; n++ {
		id, err := a.AllocateNext("P", "p-count")
		require.NoError(t, err)
		assert.Equal(t, DocumentID(fmt.Sprintf("P%03d", n)), id)
	}
}

func TestAllocateNextWidensPastThreeDigits(t *testing.T) {
	kv := newMemKV()
	kv.data["p-count"] = "999"
	a := NewAllocator(kv)

	id, err := a.AllocateNext("P", "p-count")
	require.NoError(t, err)
	assert.Equal(t, DocumentID("P1000"), id)
	assert.Equal(t, "1000", kv.data["p-count"])
}

func TestAllocateNextPersistsCounter(t *testing.T) {
	kv := newMemKV()
	a := NewAllocator(kv)
	_, _ = a.AllocateNext("P", "p-count")
	_, _ = a.AllocateNext("P", "p-count")

	// A second allocator over the same store continues the sequence.
	id, err := NewAllocator(kv).AllocateNext("P", "p-count")
	require.NoError(t, err)
	assert.Equal(t, DocumentID("P003"), id)
}

func TestAllocateNextUnparseableCounter(t *testing.T) {
	for _, v := range []string{"", "abc", "-4", "1.5"} {
		kv := newMemKV()
		kv.data["p-count"] = v
		id, err := NewAllocator(kv).AllocateNext("P", "p-count")
		require.NoError(t, err, v)
		assert.Equal(t, DocumentID("P001"), id, "counter %q", v)
	}
}

func TestResetCounterReissues(t *testing.T) {
	kv := newMemKV()
	a := NewAllocator(kv)
	for i := 0; i < 3; i++ {
		_, _ = a.AllocateNext("P", "p-count")
	}
	require.NoError(t, a.ResetCounter("p-count"))

	first, err := a.AllocateNext("P", "p-count")
	require.NoError(t, err)
	second, _ := a.AllocateNext("P", "p-count")
	assert.Equal(t, DocumentID("P001"), first)
	assert.Equal(t, DocumentID("P002"), second)
}

func TestAllocatorKindKeys(t *testing.T) {
	kv := newMemKV()
	a := NewAllocator(kv)

	inv, err := a.Next(Invoice)
	require.NoError(t, err)
	qut, err := a.Next(Quotation)
	require.NoError(t, err)

	assert.Equal(t, DocumentID("AINV001"), inv)
	assert.Equal(t, DocumentID("AQUT001"), qut)
	assert.Equal(t, "1", kv.data["invoice-count"])
	assert.Equal(t, "1", kv.data["quotation-count"])

	_, err = a.Next(Kind("receipt"))
	assert.ErrorIs(t, err, ErrInvalidKind)
}

func TestAllocatorPersistenceFailure(t *testing.T) {
	kv := newMemKV()
	kv.failSet = true
	_, err := NewAllocator(kv).AllocateNext("P", "p-count")
	assert.ErrorIs(t, err, ErrPersistenceUnavailable)

	kv.failSet = false
	kv.failGet = true
	_, err = NewAllocator(kv).AllocateNext("P", "p-count")
	assert.ErrorIs(t, err, ErrPersistenceUnavailable)
}

func TestRandomReferencesShape(t *testing.T) {
	re := regexp.MustCompile(`^CUST-[0-9A-Z]{6}$`)
	var g RandomReferences
	for i := 0; i < 200; i++ {
		ref := g.Generate()
		assert.Regexp(t, re, ref)
	}
}

func TestFixedReference(t *testing.T) {
	var g ReferenceGenerator = FixedReference("CUST-TEST01")
	assert.Equal(t, "CUST-TEST01", g.Generate())
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("Invoices")
	require.NoError(t, err)
	assert.Equal(t, Invoice, k)

	k, err = ParseKind("quotation")
	require.NoError(t, err)
	assert.Equal(t, Quotation, k)

	_, err = ParseKind("bill")
	assert.ErrorIs(t, err, ErrInvalidKind)
}

func TestKindKeys(t *testing.T) {
	assert.Equal(t, "invoice-count", Invoice.CounterKey())
	assert.Equal(t, "invoices", Invoice.ListKey())
	assert.Equal(t, "quotation-count", Quotation.CounterKey())
	assert.Equal(t, "quotations", Quotation.ListKey())
	assert.Equal(t, "AINV", Invoice.Prefix())
	assert.Equal(t, "AQUT", Quotation.Prefix())
}
