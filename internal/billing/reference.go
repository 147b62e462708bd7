package billing

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ReferencePrefix starts every generated customer reference.
const ReferencePrefix = "CUST-"

const referenceLen = 6

// ReferenceGenerator produces customer references. Implementations need
// not guarantee uniqueness.
type ReferenceGenerator interface {
	Generate() string
}

// RandomReferences draws references from random (v4) UUIDs.
type RandomReferences struct{}

// Generate returns CUST- followed by six uppercase base-36 characters.
func (RandomReferences) Generate() string {
	u := uuid.New()
	n := binary.BigEndian.Uint64(u[8:])
	s := strconv.FormatUint(n, 36)
	if len(s) < referenceLen {
		s = strings.Repeat("0", referenceLen-len(s)) + s
	}
	return ReferencePrefix + strings.ToUpper(s[len(s)-referenceLen:])
}

// FixedReference always returns the same reference.
type FixedReference string

func (f FixedReference) Generate() string { return string(f) }
