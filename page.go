package linhash

// pageHeaderSize is the fixed 24-byte header every page (control page
// excluded) carries: num_records, next, prev, each an 8-byte LE uint64.
const pageHeaderSize = 24

// page is the in-memory image of one fixed-size page (spec component B).
// It is layout-only: it knows how to read and write its own header and
// record slots, and nothing about hashing or buckets.
type page struct {
	id    uint64
	data  []byte // full pageSize bytes, header included
	dirty bool

	numRecords uint64
	next       uint64 // 0 == none
	prev       uint64 // 0 == none

	keySize, valSize uint32
}

func newPage(id uint64, pageSize, keySize, valSize uint32) *page {
	p := &page{
		id:      id,
		data:    make([]byte, pageSize),
		keySize: keySize,
		valSize: valSize,
	}
	p.writeHeader()
	return p
}

// recordSize is the width of one (key,val) slot.
func (p *page) recordSize() uint32 { return p.keySize + p.valSize }

// recordsPerPage is the page's fixed slot capacity.
func (p *page) recordsPerPage() uint32 {
	return (uint32(len(p.data)) - pageHeaderSize) / p.recordSize()
}

// computeOffsets returns the byte range of record row within the page,
// deterministically: header_size + row*(keysize+valsize).
func (p *page) computeOffsets(row uint32) (keyOff, valOff, end uint32) {
	rowStart := pageHeaderSize + row*p.recordSize()
	keyOff = rowStart
	valOff = keyOff + p.keySize
	end = valOff + p.valSize
	return
}

// readRecord returns the key and value stored at row. Precondition:
// row < numRecords.
func (p *page) readRecord(row uint32) (key, val []byte) {
	keyOff, valOff, end := p.computeOffsets(row)
	return p.data[keyOff:valOff], p.data[valOff:end]
}

// writeRecord writes key/val into row's slot. It does not touch
// numRecords — callers append a new slot via incrNumRecords, or update an
// existing one in place.
func (p *page) writeRecord(row uint32, key, val []byte) {
	keyOff, valOff, end := p.computeOffsets(row)
	copy(p.data[keyOff:valOff], key)
	copy(p.data[valOff:end], val)
}

// incrNumRecords bumps the record count after appending a new slot. Never
// called on an in-place update.
func (p *page) incrNumRecords() {
	p.numRecords++
}

// readHeader syncs the in-memory header fields from bytes 0..pageHeaderSize.
func (p *page) readHeader() {
	p.numRecords = decodeU64(p.data[0:8])
	p.next = decodeU64(p.data[8:16])
	p.prev = decodeU64(p.data[16:24])
}

// writeHeader syncs bytes 0..pageHeaderSize from the in-memory header
// fields.
func (p *page) writeHeader() {
	b := encodeU64(p.numRecords)
	copy(p.data[0:8], b[:])
	b = encodeU64(p.next)
	copy(p.data[8:16], b[:])
	b = encodeU64(p.prev)
	copy(p.data[16:24], b[:])
}

// reset reinitializes the page to an empty image, keeping its id.
func (p *page) reset() {
	for i := range p.data {
		p.data[i] = 0
	}
	p.numRecords = 0
	p.next = 0
	p.prev = 0
	p.dirty = false
}
