// Package record implements the container's typed-record codec: parsing and
// emitting FREE/ROW/FILE/FOLDER records from/to a byte stream (spec.md §4.1).
//
// Every record begins with a 1-byte type tag followed by a big-endian
// int64 data_size; the record's total on-disk size is 1 + 8 + data_size.
package record

import (
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/SBOne-Kenobi/OneFS/node"
	"github.com/SBOne-Kenobi/OneFS/util/hexdump"
)

// Type tags the kind of record at a given offset.
type Type uint8

const (
	TypeFree   Type = 0
	TypeRow    Type = 1
	TypeFile   Type = 2
	TypeFolder Type = 3
)

func (t Type) String() string {
	switch t {
	case TypeFree:
		return "FREE"
	case TypeRow:
		return "ROW"
	case TypeFile:
		return "FILE"
	case TypeFolder:
		return "FOLDER"
	default:
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
}

const (
	// HeaderSize is the 1-byte type tag plus the 8-byte big-endian data_size.
	HeaderSize = 1 + 8

	// NameSize is the fixed, zero-padded width of every on-disk name field.
	NameSize = 30

	// rowPayloadHeaderSize is ROW's filled+capacity prefix, before content bytes.
	rowPayloadHeaderSize = 8 + 8

	// FilePayloadSize is FILE's fixed payload size: name[30] + parent_ptr +
	// content_ptr + creation_ts + modification_ts + md5[16] + a 4-byte
	// reserved field, padding the declared field list (78 bytes) out to the
	// container format's documented 82-byte FILE payload.
	FilePayloadSize = NameSize + 8 + 8 + 8 + 8 + 16 + 4

	// FolderPayloadSize is FOLDER's fixed payload size: name[30] + parent_ptr
	// + children_ptr.
	FolderPayloadSize = NameSize + 8 + 8

	// NullPtr is the pointer value denoting "no record".
	NullPtr int64 = -1
)

// Header is the common prefix of every record.
type Header struct {
	Type     Type
	DataSize int64
}

// Size returns the total on-disk footprint of a record with this header.
func (h Header) Size() int64 {
	return HeaderSize + h.DataSize
}

// Free is an unused hole; DataSize is its payload capacity.
type Free struct {
	Header
}

// Row is a raw data cell: Filled <= Capacity bytes of payload.
type Row struct {
	Header
	Filled   int64
	Capacity int64
}

// File is a fixed-size FILE record.
type File struct {
	Header
	Name             string
	ParentPtr        int64
	ContentPtr       int64
	CreationTs       int64
	ModificationTs   int64
	MD5              [16]byte
}

// Folder is a fixed-size FOLDER record.
type Folder struct {
	Header
	Name        string
	ParentPtr   int64
	ChildrenPtr int64
}

// Record is implemented by Free, Row, File, Folder.
type Record interface {
	header() Header
}

func (f Free) header() Header   { return f.Header }
func (r Row) header() Header    { return r.Header }
func (f File) header() Header   { return f.Header }
func (f Folder) header() Header { return f.Header }

// Size returns the total on-disk footprint of rec.
func Size(rec Record) int64 { return rec.header().Size() }

// EncodeName zero-pads name to NameSize bytes, failing with a WriteError if
// the UTF-8 encoding does not fit (spec.md §9 Open Questions: reject rather
// than silently truncate).
func EncodeName(name string) ([NameSize]byte, error) {
	var out [NameSize]byte
	b := []byte(name)
	if len(b) > NameSize {
		return out, node.NewWriteError(fmt.Sprintf("name %q is %d bytes, exceeds the %d byte limit", name, len(b), NameSize), nil)
	}
	if !utf8.Valid(b) {
		return out, node.NewWriteError(fmt.Sprintf("name %q is not valid UTF-8", name), nil)
	}
	copy(out[:], b)
	return out, nil
}

// DecodeName reads a zero-padded name field, stopping at the first zero byte.
func DecodeName(b [NameSize]byte) (string, error) {
	n := 0
	for n < len(b) && b[n] != 0 {
		n++
	}
	if !utf8.Valid(b[:n]) {
		return "", node.NewParseError(fmt.Sprintf("name field is not valid UTF-8:\n%s", hexdump.Dump(b[:n], 16)), nil)
	}
	return string(b[:n]), nil
}

// Parse reads one record's header and fixed payload fields from r, starting
// at the current read position. A FREE record's payload and a ROW's content
// bytes are left unread. It returns (nil, io.EOF) only when r is positioned
// exactly at a clean end of stream before any byte of a new record has been
// read.
func Parse(r io.Reader) (Record, error) {
	var hdrBuf [HeaderSize]byte
	n, err := io.ReadFull(r, hdrBuf[:])
	if err != nil {
		if n == 0 && err == io.EOF {
			return nil, io.EOF
		}
		return nil, node.NewParseError("short read on record header", err)
	}

	typ := Type(hdrBuf[0])
	dataSize := int64(binary.BigEndian.Uint64(hdrBuf[1:]))
	if dataSize < 0 {
		return nil, node.NewParseError(fmt.Sprintf("negative data_size %d, header bytes:\n%s", dataSize, hexdump.Dump(hdrBuf[:], 16)), nil)
	}
	hdr := Header{Type: typ, DataSize: dataSize}

	switch typ {
	case TypeFree:
		return Free{Header: hdr}, nil
	case TypeRow:
		return parseRow(r, hdr)
	case TypeFile:
		return parseFile(r, hdr)
	case TypeFolder:
		return parseFolder(r, hdr)
	default:
		return nil, node.NewParseError(fmt.Sprintf("invalid record type tag %d, header bytes:\n%s", typ, hexdump.Dump(hdrBuf[:], 16)), nil)
	}
}

func parseRow(r io.Reader, hdr Header) (Record, error) {
	if hdr.DataSize < rowPayloadHeaderSize {
		return nil, node.NewParseError(fmt.Sprintf("ROW data_size %d is smaller than the filled/capacity prefix", hdr.DataSize), nil)
	}
	var buf [rowPayloadHeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, node.NewParseError("short read on ROW filled/capacity", err)
	}
	filled := int64(binary.BigEndian.Uint64(buf[0:8]))
	capacity := int64(binary.BigEndian.Uint64(buf[8:16]))
	if capacity != hdr.DataSize-rowPayloadHeaderSize {
		var want [8]byte
		binary.BigEndian.PutUint64(want[:], uint64(hdr.DataSize-rowPayloadHeaderSize))
		diff := hexdump.Diff("capacity field", want[:], buf[8:16])
		return nil, node.NewParseError(fmt.Sprintf("ROW capacity %d does not match data_size %d\n%s", capacity, hdr.DataSize, diff), nil)
	}
	if filled > capacity || filled < 0 {
		return nil, node.NewParseError(fmt.Sprintf("ROW filled %d out of range [0, %d]", filled, capacity), nil)
	}
	return Row{Header: hdr, Filled: filled, Capacity: capacity}, nil
}

func parseFile(r io.Reader, hdr Header) (Record, error) {
	if hdr.DataSize != FilePayloadSize {
		return nil, node.NewParseError(fmt.Sprintf("FILE payload size %d, want %d", hdr.DataSize, FilePayloadSize), nil)
	}
	var buf [FilePayloadSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, node.NewParseError("short read on FILE payload", err)
	}
	var nameBuf [NameSize]byte
	copy(nameBuf[:], buf[0:NameSize])
	name, err := DecodeName(nameBuf)
	if err != nil {
		return nil, err
	}
	off := NameSize
	parentPtr := int64(binary.BigEndian.Uint64(buf[off : off+8]))
	off += 8
	contentPtr := int64(binary.BigEndian.Uint64(buf[off : off+8]))
	off += 8
	creationTs := int64(binary.BigEndian.Uint64(buf[off : off+8]))
	off += 8
	modificationTs := int64(binary.BigEndian.Uint64(buf[off : off+8]))
	off += 8
	var md5 [16]byte
	copy(md5[:], buf[off:off+16])

	return File{
		Header:         hdr,
		Name:           name,
		ParentPtr:      parentPtr,
		ContentPtr:     contentPtr,
		CreationTs:     creationTs,
		ModificationTs: modificationTs,
		MD5:            md5,
	}, nil
}

func parseFolder(r io.Reader, hdr Header) (Record, error) {
	if hdr.DataSize != FolderPayloadSize {
		return nil, node.NewParseError(fmt.Sprintf("FOLDER payload size %d, want %d", hdr.DataSize, FolderPayloadSize), nil)
	}
	var buf [FolderPayloadSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, node.NewParseError("short read on FOLDER payload", err)
	}
	var nameBuf [NameSize]byte
	copy(nameBuf[:], buf[0:NameSize])
	name, err := DecodeName(nameBuf)
	if err != nil {
		return nil, err
	}
	off := NameSize
	parentPtr := int64(binary.BigEndian.Uint64(buf[off : off+8]))
	off += 8
	childrenPtr := int64(binary.BigEndian.Uint64(buf[off : off+8]))

	return Folder{
		Header:      hdr,
		Name:        name,
		ParentPtr:   parentPtr,
		ChildrenPtr: childrenPtr,
	}, nil
}

// Write emits rec's header and payload to w. For a Row, up to Filled bytes
// of data are streamed and the remainder up to Capacity is zero-padded
// (spec.md §4.1).
func Write(w io.Writer, rec Record, data io.Reader) error {
	switch r := rec.(type) {
	case Free:
		return writeHeader(w, TypeFree, r.DataSize)
	case Row:
		return writeRow(w, r, data)
	case File:
		return writeFile(w, r)
	case Folder:
		return writeFolder(w, r)
	default:
		return fmt.Errorf("record: unknown record type %T", rec)
	}
}

func writeHeader(w io.Writer, typ Type, dataSize int64) error {
	var buf [HeaderSize]byte
	buf[0] = byte(typ)
	binary.BigEndian.PutUint64(buf[1:], uint64(dataSize))
	_, err := w.Write(buf[:])
	return err
}

func writeRow(w io.Writer, r Row, data io.Reader) error {
	dataSize := rowPayloadHeaderSize + r.Capacity
	if err := writeHeader(w, TypeRow, dataSize); err != nil {
		return err
	}
	var buf [rowPayloadHeaderSize]byte
	binary.BigEndian.PutUint64(buf[0:8], uint64(r.Filled))
	binary.BigEndian.PutUint64(buf[8:16], uint64(r.Capacity))
	if _, err := w.Write(buf[:]); err != nil {
		return err
	}

	written := int64(0)
	if data != nil && r.Filled > 0 {
		n, err := io.CopyN(w, data, r.Filled)
		written = n
		if err != nil && err != io.EOF {
			return node.NewWriteError("short write streaming ROW content", err)
		}
	}
	pad := r.Capacity - written
	if pad < 0 {
		return node.NewWriteError(fmt.Sprintf("ROW content of %d bytes exceeds capacity %d", written, r.Capacity), nil)
	}
	return writeZeros(w, pad)
}

func writeZeros(w io.Writer, n int64) error {
	if n <= 0 {
		return nil
	}
	var zeros [4096]byte
	for n > 0 {
		chunk := int64(len(zeros))
		if n < chunk {
			chunk = n
		}
		if _, err := w.Write(zeros[:chunk]); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}

func writeFile(w io.Writer, f File) error {
	if err := writeHeader(w, TypeFile, FilePayloadSize); err != nil {
		return err
	}
	nameBuf, err := EncodeName(f.Name)
	if err != nil {
		return err
	}
	var buf [FilePayloadSize]byte
	copy(buf[0:NameSize], nameBuf[:])
	off := NameSize
	binary.BigEndian.PutUint64(buf[off:off+8], uint64(f.ParentPtr))
	off += 8
	binary.BigEndian.PutUint64(buf[off:off+8], uint64(f.ContentPtr))
	off += 8
	binary.BigEndian.PutUint64(buf[off:off+8], uint64(f.CreationTs))
	off += 8
	binary.BigEndian.PutUint64(buf[off:off+8], uint64(f.ModificationTs))
	off += 8
	copy(buf[off:off+16], f.MD5[:])
	_, werr := w.Write(buf[:])
	return werr
}

func writeFolder(w io.Writer, f Folder) error {
	if err := writeHeader(w, TypeFolder, FolderPayloadSize); err != nil {
		return err
	}
	nameBuf, err := EncodeName(f.Name)
	if err != nil {
		return err
	}
	var buf [FolderPayloadSize]byte
	copy(buf[0:NameSize], nameBuf[:])
	off := NameSize
	binary.BigEndian.PutUint64(buf[off:off+8], uint64(f.ParentPtr))
	off += 8
	binary.BigEndian.PutUint64(buf[off:off+8], uint64(f.ChildrenPtr))
	_, werr := w.Write(buf[:])
	return werr
}
